package competitors

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/internal/notifications"
	"github.com/shoplens/shoplens-backend/internal/products"
	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
	"github.com/shoplens/shoplens-backend/pkg/pagination"
)

// Service defines competitor suggestion operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Review(ctx context.Context, shopID, suggestionID uuid.UUID, status enums.SuggestionStatus) error
	Ingest(ctx context.Context, params IngestParams) (*models.CompetitorSuggestion, bool, error)
	Summary(ctx context.Context, shopID uuid.UUID) (*SummaryResult, error)
}

type service struct {
	repo     Repository
	products products.Repository
	notifier notifications.Service
	logg     *logger.Logger
}

// ListParams configures pagination and filters.
type ListParams struct {
	ShopID    uuid.UUID
	ProductID uuid.UUID
	Status    string
	Limit     int
	Cursor    string
}

// ListResult wraps returned suggestions and the cursor for the next page.
type ListResult struct {
	Items  []models.CompetitorSuggestion `json:"items"`
	Cursor string                        `json:"cursor"`
}

// IngestParams is one competitor listing reported by a feed. The
// product may be referenced by internal id or by its external id.
type IngestParams struct {
	ShopID            uuid.UUID
	ProductID         uuid.UUID
	ProductExternalID string
	SuggestedURL      string
	Price             decimal.Decimal
	Currency          string
	Source            enums.SuggestionSource
}

// SummaryResult aggregates review progress and price position.
type SummaryResult struct {
	Total         int64           `json:"total"`
	New           int64           `json:"new"`
	Approved      int64           `json:"approved"`
	Ignored       int64           `json:"ignored"`
	UndercutCount int64           `json:"undercut_count"`
	AvgPriceDelta decimal.Decimal `json:"avg_price_delta"`
	TrackedPairs  int64           `json:"tracked_pairs"`
}

// NewService wires competitor dependencies. The notifier is optional;
// without it new suggestions simply do not alert.
func NewService(repo Repository, productsRepo products.Repository, notifier notifications.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "competitors repository required")
	}
	if productsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	return &service{
		repo:     repo,
		products: productsRepo,
		notifier: notifier,
		logg:     logg,
	}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}

	query := listSuggestionsParams{
		ShopID:    params.ShopID,
		ProductID: params.ProductID,
		Limit:     params.Limit,
	}
	if status := strings.TrimSpace(params.Status); status != "" {
		parsed, err := enums.ParseSuggestionStatus(status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		query.Status = parsed
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suggestions")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// Review records the merchant decision. Setting the same status twice
// is a no-op, not an error.
func (s *service) Review(ctx context.Context, shopID, suggestionID uuid.UUID, status enums.SuggestionStatus) error {
	if shopID == uuid.Nil || suggestionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop and suggestion ids required")
	}
	if status != enums.SuggestionStatusApproved && status != enums.SuggestionStatusIgnored {
		return pkgerrors.New(pkgerrors.CodeValidation, "status must be approved or ignored")
	}

	affected, err := s.repo.UpdateStatus(ctx, shopID, suggestionID, status, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update suggestion status")
	}
	if affected == 0 {
		if _, ferr := s.repo.FindByID(ctx, shopID, suggestionID); ferr != nil {
			if errors.Is(ferr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "suggestion not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, ferr, "find suggestion")
		}
	}
	return nil
}

// Ingest upserts a suggestion keyed by (product, url). Replays refresh
// the stored price; only a genuinely new listing raises a shop-wide
// competitor alert.
func (s *service) Ingest(ctx context.Context, params IngestParams) (*models.CompetitorSuggestion, bool, error) {
	if params.ShopID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	suggestedURL := strings.TrimSpace(params.SuggestedURL)
	if suggestedURL == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "suggested url required")
	}
	if parsed, err := url.Parse(suggestedURL); err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "suggested url must be absolute http(s)")
	}
	if params.Price.IsNegative() {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if !params.Source.IsValid() {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "invalid source")
	}

	product, err := s.resolveProduct(ctx, params)
	if err != nil {
		return nil, false, err
	}

	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = product.Currency
	}

	suggestion := &models.CompetitorSuggestion{
		ShopID:       params.ShopID,
		ProductID:    product.ID,
		SuggestedURL: suggestedURL,
		Price:        params.Price,
		Currency:     currency,
		Source:       params.Source,
		Status:       enums.SuggestionStatusNew,
	}

	created, err := s.repo.Upsert(ctx, suggestion)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert suggestion")
	}

	if created && s.notifier != nil {
		_, nerr := s.notifier.Create(ctx, notifications.CreateParams{
			ShopID:   params.ShopID,
			Title:    "New competitor found",
			Message:  fmt.Sprintf("A competitor listing was found for %q at %s.", product.Title, suggestedURL),
			Type:     enums.NotificationTypeCompetitorAlert,
			Category: enums.NotificationCategoryCompetitors,
		})
		if nerr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", nerr.Error()), "competitors.alert_failed")
		}
	}

	return suggestion, created, nil
}

func (s *service) resolveProduct(ctx context.Context, params IngestParams) (*models.Product, error) {
	var (
		product *models.Product
		err     error
	)
	switch {
	case params.ProductID != uuid.Nil:
		product, err = s.products.FindByID(ctx, params.ShopID, params.ProductID)
	case strings.TrimSpace(params.ProductExternalID) != "":
		product, err = s.products.FindByExternalID(ctx, params.ShopID, strings.TrimSpace(params.ProductExternalID))
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product reference required")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	return product, nil
}

// Summary reports review progress plus how the shop's prices sit
// against approved competitor listings.
func (s *service) Summary(ctx context.Context, shopID uuid.UUID) (*SummaryResult, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}

	counts, err := s.repo.CountByStatus(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count suggestions")
	}

	result := &SummaryResult{
		New:           counts[enums.SuggestionStatusNew],
		Approved:      counts[enums.SuggestionStatusApproved],
		Ignored:       counts[enums.SuggestionStatusIgnored],
		AvgPriceDelta: decimal.Zero,
	}
	result.Total = result.New + result.Approved + result.Ignored

	pairs, err := s.repo.ApprovedPricePairs(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price pairs")
	}

	if len(pairs) > 0 {
		sum := decimal.Zero
		for _, pair := range pairs {
			delta := pair.SuggestionPrice.Sub(pair.ProductPrice)
			sum = sum.Add(delta)
			if delta.IsNegative() {
				result.UndercutCount++
			}
		}
		result.TrackedPairs = int64(len(pairs))
		result.AvgPriceDelta = sum.Div(decimal.NewFromInt(result.TrackedPairs)).Round(2)
	}

	return result, nil
}
