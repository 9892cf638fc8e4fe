package competitors

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	"github.com/shoplens/shoplens-backend/pkg/pagination"
)

// Repository exposes persistence helpers for competitor suggestions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, suggestion *models.CompetitorSuggestion) (bool, error)
	FindByID(ctx context.Context, shopID, id uuid.UUID) (*models.CompetitorSuggestion, error)
	List(ctx context.Context, params listSuggestionsParams) ([]models.CompetitorSuggestion, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, shopID, id uuid.UUID, status enums.SuggestionStatus, now time.Time) (int64, error)
	CountByStatus(ctx context.Context, shopID uuid.UUID) (map[enums.SuggestionStatus]int64, error)
	ApprovedPricePairs(ctx context.Context, shopID uuid.UUID) ([]pricePair, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a suggestions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listSuggestionsParams struct {
	ShopID    uuid.UUID
	ProductID uuid.UUID
	Status    enums.SuggestionStatus
	Limit     int
	Cursor    *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Upsert inserts the suggestion or, when the (product, url) pair is
// already known, refreshes its price. It reports whether a new row was
// created so the caller can decide to alert. Created is derived from
// the insert itself, so concurrent ingests of the same pair cannot
// both claim the row.
func (r *repositoryImpl) Upsert(ctx context.Context, suggestion *models.CompetitorSuggestion) (bool, error) {
	insert := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "suggested_url"}},
			DoNothing: true,
		}).
		Create(suggestion)
	if insert.Error != nil {
		return false, insert.Error
	}
	if insert.RowsAffected > 0 {
		return true, nil
	}

	// Conflict path: refresh the existing row and hand it back so the
	// caller sees the canonical id, not the discarded one.
	err := r.db.WithContext(ctx).
		Model(&models.CompetitorSuggestion{}).
		Where("product_id = ? AND suggested_url = ?", suggestion.ProductID, suggestion.SuggestedURL).
		UpdateColumns(map[string]any{
			"price":      suggestion.Price,
			"currency":   suggestion.Currency,
			"source":     suggestion.Source,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
	if err != nil {
		return false, err
	}

	var existing models.CompetitorSuggestion
	err = r.db.WithContext(ctx).
		First(&existing, "product_id = ? AND suggested_url = ?", suggestion.ProductID, suggestion.SuggestedURL).Error
	if err != nil {
		return false, err
	}
	*suggestion = existing
	return false, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, shopID, id uuid.UUID) (*models.CompetitorSuggestion, error) {
	var suggestion models.CompetitorSuggestion
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&suggestion, "id = ? AND shop_id = ?", id, shopID).Error
	if err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listSuggestionsParams) ([]models.CompetitorSuggestion, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.CompetitorSuggestion{}).
		Preload("Product").
		Where("shop_id = ?", params.ShopID)
	if params.ProductID != uuid.Nil {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.CompetitorSuggestion
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, shopID, id uuid.UUID, status enums.SuggestionStatus, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CompetitorSuggestion{}).
		Where("id = ? AND shop_id = ?", id, shopID).
		UpdateColumns(map[string]any{
			"status":     status,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

type pricePair struct {
	SuggestionPrice decimal.Decimal
	ProductPrice    decimal.Decimal
}

// ApprovedPricePairs returns the competitor price next to our price
// for every approved suggestion of the shop.
func (r *repositoryImpl) ApprovedPricePairs(ctx context.Context, shopID uuid.UUID) ([]pricePair, error) {
	var rows []pricePair
	err := r.db.WithContext(ctx).
		Model(&models.CompetitorSuggestion{}).
		Select("competitor_suggestions.price AS suggestion_price, products.price AS product_price").
		Joins("JOIN products ON products.id = competitor_suggestions.product_id").
		Where("competitor_suggestions.shop_id = ? AND competitor_suggestions.status = ?", shopID, enums.SuggestionStatusApproved).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) CountByStatus(ctx context.Context, shopID uuid.UUID) (map[enums.SuggestionStatus]int64, error) {
	type statusCount struct {
		Status enums.SuggestionStatus
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.CompetitorSuggestion{}).
		Select("status, count(*) as count").
		Where("shop_id = ?", shopID).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.SuggestionStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
