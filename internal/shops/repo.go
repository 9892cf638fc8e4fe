package shops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
)

// Repository exposes persistence helpers for installed shops.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	FindByDomain(ctx context.Context, domain string) (*models.Shop, error)
	Upsert(ctx context.Context, shop *models.Shop) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a shops repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *repositoryImpl) FindByDomain(ctx context.Context, domain string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "domain = ?", domain).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// Upsert inserts the shop or, when the domain is already installed,
// refreshes its access token and reactivates it.
func (r *repositoryImpl) Upsert(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "domain"}},
				DoUpdates: clause.Assignments(map[string]any{
					"access_token": shop.AccessToken,
					"app_url":      shop.AppURL,
					"active":       true,
					"updated_at":   gorm.Expr("CURRENT_TIMESTAMP"),
				}),
			},
			clause.Returning{},
		).
		Create(shop).Error
}

func (r *repositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", id).
		UpdateColumn("active", active)
	return result.RowsAffected, result.Error
}
