package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	"github.com/shoplens/shoplens-backend/pkg/pagination"
)

// Repository exposes persistence helpers for notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	UnreadCount(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, shopID, sessionID, notificationID uuid.UUID, now time.Time) (markResult, error)
	MarkAllRead(ctx context.Context, shopID, sessionID uuid.UUID, now time.Time) (int64, error)
	SoftDelete(ctx context.Context, shopID, sessionID, notificationID uuid.UUID, now time.Time) (markResult, error)
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	ShopID     uuid.UUID
	SessionID  uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
	Category   enums.NotificationCategory
}

type markResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// visible scopes a query to rows the session may see: its own rows
// plus shop-wide rows, soft-deleted ones excluded.
func (r *repositoryImpl) visible(ctx context.Context, shopID, sessionID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("shop_id = ? AND (session_id = ? OR session_id IS NULL) AND deleted = ?", shopID, sessionID, false)
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.visible(ctx, params.ShopID, params.SessionID)
	if params.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) UnreadCount(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.visible(ctx, shopID, sessionID).
		Where("read_at IS NULL").
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) MarkRead(ctx context.Context, shopID, sessionID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	result := r.visible(ctx, shopID, sessionID).
		Where("id = ? AND read_at IS NULL", notificationID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return markResult{}, result.Error
	}

	mark := markResult{Updated: result.RowsAffected > 0}
	if mark.Updated {
		mark.Found = true
		return mark, nil
	}

	var count int64
	if err := r.visible(ctx, shopID, sessionID).
		Where("id = ?", notificationID).
		Count(&count).Error; err != nil {
		return markResult{}, err
	}
	mark.Found = count > 0
	return mark, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, shopID, sessionID uuid.UUID, now time.Time) (int64, error) {
	result := r.visible(ctx, shopID, sessionID).
		Where("read_at IS NULL").
		UpdateColumn("read_at", now)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) SoftDelete(ctx context.Context, shopID, sessionID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	result := r.visible(ctx, shopID, sessionID).
		Where("id = ?", notificationID).
		UpdateColumns(map[string]any{
			"deleted":    true,
			"deleted_at": now,
		})
	if result.Error != nil {
		return markResult{}, result.Error
	}
	return markResult{Updated: result.RowsAffected > 0, Found: result.RowsAffected > 0}, nil
}

// PurgeDeletedBefore hard-deletes rows that were soft-deleted before
// the cutoff, plus any row created before it regardless of flags. Rows
// deleted more recently stay recoverable until they age out.
func (r *repositoryImpl) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("(deleted = ? AND deleted_at IS NOT NULL AND deleted_at <= ?) OR created_at <= ?", true, cutoff, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
