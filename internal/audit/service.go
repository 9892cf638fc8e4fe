package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/pkg/config"
	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
	"github.com/shoplens/shoplens-backend/pkg/pagination"
	"github.com/shoplens/shoplens-backend/pkg/security"
)

// Service records and reads the privacy trail. Raw client IPs never
// leave this package unhashed.
type Service interface {
	Record(ctx context.Context, params RecordParams)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Purge(ctx context.Context, now time.Time, retentionDays int) (int64, error)
}

type service struct {
	repo  Repository
	ipKey string
	logg  *logger.Logger
}

// RecordParams describes one auditable event.
type RecordParams struct {
	ShopID    uuid.UUID
	SessionID *uuid.UUID
	Action    enums.AuditAction
	Detail    string
	ClientIP  string
}

// ListParams configures audit trail pagination.
type ListParams struct {
	ShopID uuid.UUID
	Action string
	Limit  int
	Cursor string
}

// ListResult wraps returned events and the cursor for the next page.
type ListResult struct {
	Items  []models.AuditEvent `json:"items"`
	Cursor string              `json:"cursor"`
}

// NewService wires audit dependencies.
func NewService(repo Repository, cfg config.AuditConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audit repository required")
	}
	if cfg.IPHashKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audit ip hash key required")
	}
	return &service{repo: repo, ipKey: cfg.IPHashKey, logg: logg}, nil
}

// Record writes the event best-effort. Auditing must never fail the
// request it describes, so errors are logged and swallowed.
func (s *service) Record(ctx context.Context, params RecordParams) {
	if params.ShopID == uuid.Nil || !params.Action.IsValid() {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "action", string(params.Action)), "audit.invalid_event")
		}
		return
	}

	event := &models.AuditEvent{
		ShopID:    params.ShopID,
		SessionID: params.SessionID,
		Action:    params.Action,
		Detail:    params.Detail,
		IPHash:    security.HashIP(s.ipKey, params.ClientIP),
	}
	if err := s.repo.Create(ctx, event); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "audit.record_failed")
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}

	query := listEventsParams{
		ShopID: params.ShopID,
		Limit:  params.Limit,
	}
	if params.Action != "" {
		action, err := enums.ParseAuditAction(params.Action)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action")
		}
		query.Action = action
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit events")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// Purge removes events older than the retention window.
func (s *service) Purge(ctx context.Context, now time.Time, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retention days must be positive")
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	purged, err := s.repo.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge audit events")
	}
	return purged, nil
}
