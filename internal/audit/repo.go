package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	"github.com/shoplens/shoplens-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.AuditEvent) error
	List(ctx context.Context, params listEventsParams) ([]models.AuditEvent, *pagination.Cursor, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listEventsParams struct {
	ShopID uuid.UUID
	Action enums.AuditAction
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, event *models.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repositoryImpl) List(ctx context.Context, params listEventsParams) ([]models.AuditEvent, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.AuditEvent{}).
		Where("shop_id = ?", params.ShopID)
	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.AuditEvent
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

// PurgeBefore deletes events older than the retention cutoff.
func (r *repositoryImpl) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at <= ?", cutoff).
		Delete(&models.AuditEvent{})
	return result.RowsAffected, result.Error
}
