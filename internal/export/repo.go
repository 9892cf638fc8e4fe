package export

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
)

// Repository loads the full per-shop rowsets behind a data export.
// Exports are bounded by per-shop volume, so no pagination here.
type Repository interface {
	Sessions(ctx context.Context, shopID uuid.UUID) ([]models.ShopSession, error)
	Notifications(ctx context.Context, shopID uuid.UUID) ([]models.Notification, error)
	Suggestions(ctx context.Context, shopID uuid.UUID) ([]models.CompetitorSuggestion, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an export repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Sessions(ctx context.Context, shopID uuid.UUID) ([]models.ShopSession, error) {
	var rows []models.ShopSession
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) Notifications(ctx context.Context, shopID uuid.UUID) ([]models.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND deleted = ?", shopID, false).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) Suggestions(ctx context.Context, shopID uuid.UUID) ([]models.CompetitorSuggestion, error) {
	var rows []models.CompetitorSuggestion
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
