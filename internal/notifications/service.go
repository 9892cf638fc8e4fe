package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/pagination"
)

// Service defines the notification operations exposed to sessions and
// to the ops surface.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UnreadCount(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, shopID, sessionID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error)
	Delete(ctx context.Context, shopID, sessionID, notificationID uuid.UUID) error
	Create(ctx context.Context, params CreateParams) (*models.Notification, error)
	PurgeDeleted(ctx context.Context, now time.Time, retentionDays int) (int64, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination and filters for a session's feed.
type ListParams struct {
	ShopID     uuid.UUID
	SessionID  uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
	Category   string
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// CreateParams describes a notification to insert. A nil SessionID
// makes it shop-wide: every session of the shop sees it.
type CreateParams struct {
	ShopID    uuid.UUID
	SessionID *uuid.UUID
	Title     string
	Message   string
	Type      enums.NotificationType
	Category  enums.NotificationCategory
	Scope     enums.NotificationScope
}

// NewService wires notification dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.ShopID == uuid.Nil || params.SessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop and session ids required")
	}

	query := listNotificationsParams{
		ShopID:     params.ShopID,
		SessionID:  params.SessionID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if category := strings.TrimSpace(params.Category); category != "" {
		parsed, err := enums.ParseNotificationCategory(category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		query.Category = parsed
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) UnreadCount(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error) {
	if shopID == uuid.Nil || sessionID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "shop and session ids required")
	}
	count, err := s.repo.UnreadCount(ctx, shopID, sessionID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, shopID, sessionID, notificationID uuid.UUID) error {
	if shopID == uuid.Nil || sessionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop and session ids required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, shopID, sessionID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error) {
	if shopID == uuid.Nil || sessionID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "shop and session ids required")
	}
	count, err := s.repo.MarkAllRead(ctx, shopID, sessionID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

// Delete soft-deletes the notification. The row remains in storage
// until the retention job purges it.
func (s *service) Delete(ctx context.Context, shopID, sessionID, notificationID uuid.UUID) error {
	if shopID == uuid.Nil || sessionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop and session ids required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.SoftDelete(ctx, shopID, sessionID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Notification, error) {
	if params.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if strings.TrimSpace(params.Message) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}
	if !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}

	category := params.Category
	if category == "" {
		category = enums.NotificationCategoryGeneral
	}
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification category")
	}

	scope := params.Scope
	if scope == "" {
		scope = enums.NotificationScopeInbox
	}
	if !scope.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification scope")
	}

	notification := &models.Notification{
		ShopID:    params.ShopID,
		SessionID: params.SessionID,
		Title:     params.Title,
		Message:   params.Message,
		Type:      params.Type,
		Category:  category,
		Scope:     scope,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return notification, nil
}

// PurgeDeleted removes soft-deleted rows older than the retention window.
func (s *service) PurgeDeleted(ctx context.Context, now time.Time, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retention days must be positive")
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	purged, err := s.repo.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge notifications")
	}
	return purged, nil
}
