package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/pkg/config"
	"github.com/shoplens/shoplens-backend/pkg/db/models"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
	"github.com/shoplens/shoplens-backend/pkg/security"
)

// SessionCache is the slice of the redis client the lifecycle touches:
// a presence key marking each live session plus the cached dashboard
// reports cleared when a session ends.
type SessionCache interface {
	SessionKey(sessionID string) string
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DashboardCachePrefix(shopID, sessionID string) string
	DelByPrefix(ctx context.Context, prefix string) (int64, error)
}

// Service owns the shop session lifecycle.
type Service interface {
	Start(ctx context.Context, params StartParams) (*models.ShopSession, error)
	VerifyAndTouch(ctx context.Context, sessionID, shopID string) error
	Current(ctx context.Context, sessionID uuid.UUID) (*models.ShopSession, error)
	ListActive(ctx context.Context, shopID uuid.UUID) ([]models.ShopSession, error)
	Logout(ctx context.Context, shopID, sessionID uuid.UUID) error
	Sweep(ctx context.Context, now time.Time) (SweepResult, error)
}

// StartParams captures the request context of a new login.
type StartParams struct {
	SessionID uuid.UUID
	ShopID    uuid.UUID
	UserAgent string
	ClientIP  string
}

// SweepResult reports what the cleanup pass changed.
type SweepResult struct {
	Deactivated int64 `json:"deactivated"`
	Purged      int64 `json:"purged"`
}

type service struct {
	repo  Repository
	cache SessionCache
	cfg   config.SessionConfig
	ipKey string
	logg  *logger.Logger
}

// NewService wires session dependencies.
func NewService(repo Repository, cache SessionCache, cfg config.SessionConfig, auditCfg config.AuditConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sessions repository required")
	}
	if cfg.TTL <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session ttl must be positive")
	}
	return &service{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
		ipKey: auditCfg.IPHashKey,
		logg:  logg,
	}, nil
}

// Start opens a new device session. Every login gets its own row and
// its own access token, so a logout on one device never revokes the
// merchant's other browsers.
func (s *service) Start(ctx context.Context, params StartParams) (*models.ShopSession, error) {
	if params.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}

	id := params.SessionID
	if id == uuid.Nil {
		id = uuid.New()
	}

	token, err := newAccessToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate access token")
	}

	now := time.Now().UTC()
	session := &models.ShopSession{
		ID:             id,
		ShopID:         params.ShopID,
		AccessToken:    token,
		UserAgent:      params.UserAgent,
		IPHash:         security.HashIP(s.ipKey, params.ClientIP),
		IsActive:       true,
		ExpiresAt:      now.Add(s.cfg.TTL),
		LastAccessedAt: now,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	// Presence key mirrors the row for cheap liveness checks; it is
	// advisory, so a cache outage never blocks the login.
	if s.cache != nil {
		key := s.cache.SessionKey(session.ID.String())
		if err := s.cache.Set(ctx, key, session.ShopID.String(), s.cfg.TTL); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session.presence_write_failed")
		}
	}
	return session, nil
}

// VerifyAndTouch confirms the session is live, belongs to the claimed
// shop, and has not idled out, then records the access time. Expired
// sessions are retired on sight.
func (s *service) VerifyAndTouch(ctx context.Context, sessionID, shopID string) error {
	sid, err := uuid.Parse(sessionID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session id")
	}
	shop, err := uuid.Parse(shopID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid shop id")
	}

	session, err := s.repo.FindActive(ctx, sid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "session not active")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}

	if session.ShopID != shop {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session does not belong to shop")
	}

	now := time.Now().UTC()
	if s.isStale(session, now) {
		if _, derr := s.repo.Deactivate(ctx, sid, now); derr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", derr.Error()), "session.retire_failed")
		}
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}

	if _, err := s.repo.Touch(ctx, sid, now); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch session")
	}
	return nil
}

func (s *service) isStale(session *models.ShopSession, now time.Time) bool {
	if !session.ExpiresAt.After(now) {
		return true
	}
	if s.cfg.IdleTimeout > 0 && now.Sub(session.LastAccessedAt) >= s.cfg.IdleTimeout {
		return true
	}
	return false
}

func (s *service) Current(ctx context.Context, sessionID uuid.UUID) (*models.ShopSession, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	session, err := s.repo.FindActive(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	return session, nil
}

func (s *service) ListActive(ctx context.Context, shopID uuid.UUID) ([]models.ShopSession, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	rows, err := s.repo.ListActiveForShop(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sessions")
	}
	return rows, nil
}

// Logout retires the session and drops every cached dashboard report
// scoped to it. A cache failure is logged but never blocks the logout.
func (s *service) Logout(ctx context.Context, shopID, sessionID uuid.UUID) error {
	if shopID == uuid.Nil || sessionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop and session ids required")
	}

	affected, err := s.repo.Deactivate(ctx, sessionID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate session")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
	}

	if s.cache != nil {
		if cerr := s.cache.Del(ctx, s.cache.SessionKey(sessionID.String())); cerr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", cerr.Error()), "session.presence_clear_failed")
		}
		prefix := s.cache.DashboardCachePrefix(shopID.String(), sessionID.String())
		if _, cerr := s.cache.DelByPrefix(ctx, prefix); cerr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", cerr.Error()), "session.cache_clear_failed")
		}
	}
	return nil
}

// Sweep retires stale sessions and deletes rows deactivated longer ago
// than the retention window.
func (s *service) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	deactivated, err := s.repo.DeactivateStale(ctx, now, s.cfg.IdleTimeout)
	if err != nil {
		return SweepResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate stale sessions")
	}

	cutoff := now.AddDate(0, 0, -s.cfg.RetentionDays)
	purged, err := s.repo.PurgeInactiveBefore(ctx, cutoff)
	if err != nil {
		return SweepResult{Deactivated: deactivated}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge inactive sessions")
	}

	return SweepResult{Deactivated: deactivated, Purged: purged}, nil
}

func newAccessToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
