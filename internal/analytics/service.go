package analytics

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/pkg/config"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

const (
	reportDashboard   = "dashboard"
	reportSessions    = "sessions"
	reportCompetitors = "competitors"

	defaultWindowDays = 30
	maxWindowDays     = 90
)

// Cache is the slice of the redis client used for report caching.
// Results are keyed per shop session so logout can clear them.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DashboardCacheKey(shopID, sessionID, report string) string
}

// Service computes the merchant-facing reports.
type Service interface {
	Dashboard(ctx context.Context, shopID, sessionID uuid.UUID) (*DashboardReport, error)
	Sessions(ctx context.Context, shopID, sessionID uuid.UUID, windowDays int) (*SessionsReport, error)
	Competitors(ctx context.Context, shopID, sessionID uuid.UUID) (*CompetitorsReport, error)
}

type service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	logg  *logger.Logger
}

// DashboardReport is the headline snapshot for the merchant home view.
type DashboardReport struct {
	ActiveSessions      int64            `json:"active_sessions"`
	SessionsPerDay      []DayCount       `json:"sessions_per_day"`
	UnreadNotifications int64            `json:"unread_notifications"`
	Suggestions         SuggestionCounts `json:"suggestions"`
	Products            int64            `json:"products"`
	GeneratedAt         time.Time        `json:"generated_at"`
}

// SuggestionCounts breaks suggestions down by review status.
type SuggestionCounts struct {
	New      int64 `json:"new"`
	Approved int64 `json:"approved"`
	Ignored  int64 `json:"ignored"`
}

// SessionsReport is the daily login series over the window.
type SessionsReport struct {
	WindowDays  int        `json:"window_days"`
	Series      []DayCount `json:"series"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// CompetitorsReport shows where the shop's prices sit per product.
type CompetitorsReport struct {
	Positions   []PricePosition `json:"positions"`
	Undercut    int64           `json:"undercut"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// NewService wires analytics dependencies. The cache is optional;
// without it every request hits Postgres.
func NewService(repo Repository, cache Cache, cfg config.CacheConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "analytics repository required")
	}
	return &service{
		repo:  repo,
		cache: cache,
		ttl:   cfg.DashboardTTL,
		logg:  logg,
	}, nil
}

func (s *service) Dashboard(ctx context.Context, shopID, sessionID uuid.UUID) (*DashboardReport, error) {
	if shopID == uuid.Nil || sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop and session ids required")
	}

	var cached DashboardReport
	if s.fromCache(ctx, shopID, sessionID, reportDashboard, &cached) {
		return &cached, nil
	}

	now := time.Now().UTC()

	active, err := s.repo.ActiveSessionCount(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active sessions")
	}
	perDay, err := s.repo.SessionsPerDay(ctx, shopID, now.AddDate(0, 0, -defaultWindowDays))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sessions per day")
	}
	unread, err := s.repo.UnreadNotificationCount(ctx, shopID, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	suggestionCounts, err := s.repo.SuggestionCountsByStatus(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count suggestions")
	}
	productCount, err := s.repo.ProductCount(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}

	report := &DashboardReport{
		ActiveSessions:      active,
		SessionsPerDay:      perDay,
		UnreadNotifications: unread,
		Suggestions: SuggestionCounts{
			New:      suggestionCounts[enums.SuggestionStatusNew],
			Approved: suggestionCounts[enums.SuggestionStatusApproved],
			Ignored:  suggestionCounts[enums.SuggestionStatusIgnored],
		},
		Products:    productCount,
		GeneratedAt: now,
	}

	s.toCache(ctx, shopID, sessionID, reportDashboard, report)
	return report, nil
}

func (s *service) Sessions(ctx context.Context, shopID, sessionID uuid.UUID, windowDays int) (*SessionsReport, error) {
	if shopID == uuid.Nil || sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop and session ids required")
	}
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	if windowDays > maxWindowDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window too large")
	}

	// Each window size caches under its own segment so alternating
	// 7- and 30-day requests do not evict each other.
	segment := reportSessions + ":" + strconv.Itoa(windowDays)

	var cached SessionsReport
	if s.fromCache(ctx, shopID, sessionID, segment, &cached) {
		return &cached, nil
	}

	now := time.Now().UTC()
	series, err := s.repo.SessionsPerDay(ctx, shopID, now.AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sessions per day")
	}

	report := &SessionsReport{
		WindowDays:  windowDays,
		Series:      series,
		GeneratedAt: now,
	}
	s.toCache(ctx, shopID, sessionID, segment, report)
	return report, nil
}

func (s *service) Competitors(ctx context.Context, shopID, sessionID uuid.UUID) (*CompetitorsReport, error) {
	if shopID == uuid.Nil || sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop and session ids required")
	}

	var cached CompetitorsReport
	if s.fromCache(ctx, shopID, sessionID, reportCompetitors, &cached) {
		return &cached, nil
	}

	positions, err := s.repo.PricePositions(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price positions")
	}

	report := &CompetitorsReport{
		Positions:   positions,
		GeneratedAt: time.Now().UTC(),
	}
	for _, position := range positions {
		if position.Competitors > 0 && position.MinCompetitor.LessThan(position.OwnPrice) {
			report.Undercut++
		}
	}

	s.toCache(ctx, shopID, sessionID, reportCompetitors, report)
	return report, nil
}

// fromCache loads a cached report. Any cache problem counts as a miss.
func (s *service) fromCache(ctx context.Context, shopID, sessionID uuid.UUID, report string, out any) bool {
	if s.cache == nil || s.ttl <= 0 {
		return false
	}
	key := s.cache.DashboardCacheKey(shopID.String(), sessionID.String(), report)
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "report", report), "analytics.cache_decode_failed")
		}
		return false
	}
	return true
}

func (s *service) toCache(ctx context.Context, shopID, sessionID uuid.UUID, report string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	key := s.cache.DashboardCacheKey(shopID.String(), sessionID.String(), report)
	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "report", report), "analytics.cache_write_failed")
	}
}
