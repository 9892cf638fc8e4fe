package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/enums"
)

// Repository runs the relational aggregates behind every report.
type Repository interface {
	ActiveSessionCount(ctx context.Context, shopID uuid.UUID) (int64, error)
	SessionsPerDay(ctx context.Context, shopID uuid.UUID, since time.Time) ([]DayCount, error)
	UnreadNotificationCount(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error)
	SuggestionCountsByStatus(ctx context.Context, shopID uuid.UUID) (map[enums.SuggestionStatus]int64, error)
	ProductCount(ctx context.Context, shopID uuid.UUID) (int64, error)
	PricePositions(ctx context.Context, shopID uuid.UUID) ([]PricePosition, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// DayCount is one bucket of a daily series.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// PricePosition compares a product's own price to its approved
// competitor listings.
type PricePosition struct {
	ProductID     uuid.UUID       `json:"product_id"`
	ProductTitle  string          `json:"product_title"`
	OwnPrice      decimal.Decimal `json:"own_price"`
	MinCompetitor decimal.Decimal `json:"min_competitor_price"`
	AvgCompetitor decimal.Decimal `json:"avg_competitor_price"`
	Competitors   int64           `json:"competitors"`
}

func (r *repositoryImpl) ActiveSessionCount(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ShopSession{}).
		Where("shop_id = ? AND is_active = ?", shopID, true).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) SessionsPerDay(ctx context.Context, shopID uuid.UUID, since time.Time) ([]DayCount, error) {
	var rows []DayCount
	err := r.db.WithContext(ctx).
		Model(&models.ShopSession{}).
		Select("date_trunc('day', created_at) AS day, count(*) AS count").
		Where("shop_id = ? AND created_at >= ?", shopID, since).
		Group("day").
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) UnreadNotificationCount(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("shop_id = ? AND (session_id = ? OR session_id IS NULL) AND deleted = ? AND read_at IS NULL", shopID, sessionID, false).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) SuggestionCountsByStatus(ctx context.Context, shopID uuid.UUID) (map[enums.SuggestionStatus]int64, error) {
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

func (r *repositoryImpl) ProductCount(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("shop_id = ?", shopID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) PricePositions(ctx context.Context, shopID uuid.UUID) ([]PricePosition, error) {
	var rows []PricePosition
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select(`products.id AS product_id,
			products.title AS product_title,
			products.price AS own_price,
			min(competitor_suggestions.price) AS min_competitor,
			avg(competitor_suggestions.price) AS avg_competitor,
			count(competitor_suggestions.id) AS competitors`).
		Joins("JOIN competitor_suggestions ON competitor_suggestions.product_id = products.id AND competitor_suggestions.status = ?", enums.SuggestionStatusApproved).
		Where("products.shop_id = ?", shopID).
		Group("products.id, products.title, products.price").
		Order("products.title ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
