package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
)

// Repository exposes persistence helpers for shop sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session *models.ShopSession) error
	FindActive(ctx context.Context, id uuid.UUID) (*models.ShopSession, error)
	ListActiveForShop(ctx context.Context, shopID uuid.UUID) ([]models.ShopSession, error)
	Touch(ctx context.Context, id uuid.UUID, now time.Time) (int64, error)
	Deactivate(ctx context.Context, id uuid.UUID, now time.Time) (int64, error)
	DeactivateStale(ctx context.Context, now time.Time, idleTimeout time.Duration) (int64, error)
	PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a sessions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, session *models.ShopSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindActive loads a session only while it is live. Deactivated rows
// stay in the table for the retention window but never authenticate.
func (r *repositoryImpl) FindActive(ctx context.Context, id uuid.UUID) (*models.ShopSession, error) {
	var session models.ShopSession
	err := r.db.WithContext(ctx).
		First(&session, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repositoryImpl) ListActiveForShop(ctx context.Context, shopID uuid.UUID) ([]models.ShopSession, error) {
	var rows []models.ShopSession
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND is_active = ?", shopID, true).
		Order("last_accessed_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Touch(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ShopSession{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("last_accessed_at", now)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Deactivate(ctx context.Context, id uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ShopSession{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumns(map[string]any{
			"is_active":      false,
			"deactivated_at": now,
		})
	return result.RowsAffected, result.Error
}

// DeactivateStale retires every live session past its absolute expiry
// or idle for longer than the timeout.
func (r *repositoryImpl) DeactivateStale(ctx context.Context, now time.Time, idleTimeout time.Duration) (int64, error) {
	idleCutoff := now.Add(-idleTimeout)
	result := r.db.WithContext(ctx).
		Model(&models.ShopSession{}).
		Where("is_active = ? AND (expires_at <= ? OR last_accessed_at <= ?)", true, now, idleCutoff).
		UpdateColumns(map[string]any{
			"is_active":      false,
			"deactivated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND deactivated_at IS NOT NULL AND deactivated_at <= ?", false, cutoff).
		Delete(&models.ShopSession{})
	return result.RowsAffected, result.Error
}
