package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/pagination"
)

// Repository exposes persistence helpers for catalog products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, shopID, id uuid.UUID) (*models.Product, error)
	FindByExternalID(ctx context.Context, shopID uuid.UUID, externalID string) (*models.Product, error)
	List(ctx context.Context, shopID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Product, *pagination.Cursor, error)
	CountForShop(ctx context.Context, shopID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a products repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Upsert inserts the product or refreshes the synced snapshot for an
// already known external id.
func (r *repositoryImpl) Upsert(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "shop_id"}, {Name: "external_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"title":      product.Title,
					"price":      product.Price,
					"currency":   product.Currency,
					"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
				}),
			},
			clause.Returning{},
		).
		Create(product).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, shopID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "id = ? AND shop_id = ?", id, shopID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) FindByExternalID(ctx context.Context, shopID uuid.UUID, externalID string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "shop_id = ? AND external_id = ?", shopID, externalID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) List(ctx context.Context, shopID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Product, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("shop_id = ?", shopID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
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

func (r *repositoryImpl) CountForShop(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("shop_id = ?", shopID).
		Count(&count).Error
	return count, err
}
