package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/pagination"
)

// Service defines catalog sync and lookup operations.
type Service interface {
	Sync(ctx context.Context, shopID uuid.UUID, items []SyncItem) (int, error)
	Get(ctx context.Context, shopID, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// SyncItem is one product snapshot pushed from the storefront feed.
type SyncItem struct {
	ExternalID string          `json:"external_id" validate:"required"`
	Title      string          `json:"title" validate:"required"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
}

// ListParams configures catalog pagination.
type ListParams struct {
	ShopID uuid.UUID
	Limit  int
	Cursor string
}

// ListResult wraps returned products and the cursor for the next page.
type ListResult struct {
	Items  []models.Product `json:"items"`
	Cursor string           `json:"cursor"`
}

// NewService wires product dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "products repository required")
	}
	return &service{repo: repo}, nil
}

// Sync upserts a batch of snapshots. Known external ids are refreshed
// in place, so the feed can be replayed safely.
func (s *service) Sync(ctx context.Context, shopID uuid.UUID, items []SyncItem) (int, error) {
	if shopID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if len(items) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "at least one product required")
	}

	synced := 0
	for _, item := range items {
		externalID := strings.TrimSpace(item.ExternalID)
		if externalID == "" {
			return synced, pkgerrors.New(pkgerrors.CodeValidation, "external id required")
		}
		if strings.TrimSpace(item.Title) == "" {
			return synced, pkgerrors.New(pkgerrors.CodeValidation, "title required")
		}
		if item.Price.IsNegative() {
			return synced, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}

		currency := strings.ToUpper(strings.TrimSpace(item.Currency))
		if currency == "" {
			currency = "USD"
		}

		product := &models.Product{
			ShopID:     shopID,
			ExternalID: externalID,
			Title:      item.Title,
			Price:      item.Price,
			Currency:   currency,
		}
		if err := s.repo.Upsert(ctx, product); err != nil {
			return synced, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert product")
		}
		synced++
	}
	return synced, nil
}

func (s *service) Get(ctx context.Context, shopID, id uuid.UUID) (*models.Product, error) {
	if shopID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop and product ids required")
	}
	product, err := s.repo.FindByID(ctx, shopID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}

	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.List(ctx, params.ShopID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	encoded := ""
	if next != nil {
		encoded = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: encoded}, nil
}
