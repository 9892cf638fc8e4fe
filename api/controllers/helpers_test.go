package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/api/middleware"
	"github.com/shoplens/shoplens-backend/internal/analytics"
	"github.com/shoplens/shoplens-backend/internal/audit"
	"github.com/shoplens/shoplens-backend/internal/competitors"
	"github.com/shoplens/shoplens-backend/internal/export"
	"github.com/shoplens/shoplens-backend/internal/notifications"
	"github.com/shoplens/shoplens-backend/internal/sessions"
	"github.com/shoplens/shoplens-backend/internal/shops"
	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

// seedSession mimics what the session middleware injects.
func seedSession(req *http.Request, shopID, sessionID uuid.UUID) *http.Request {
	ctx := middleware.WithShopID(req.Context(), shopID.String())
	ctx = middleware.WithSessionID(ctx, sessionID.String())
	return req.WithContext(ctx)
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

type recordedAudit struct {
	events []audit.RecordParams
}

func (r *recordedAudit) Record(_ context.Context, params audit.RecordParams) {
	r.events = append(r.events, params)
}

func (r *recordedAudit) List(_ context.Context, _ audit.ListParams) (*audit.ListResult, error) {
	return &audit.ListResult{}, nil
}

func (r *recordedAudit) Purge(_ context.Context, _ time.Time, _ int) (int64, error) {
	return 0, nil
}

type fakeSessionsService struct {
	startFn   func(ctx context.Context, params sessions.StartParams) (*models.ShopSession, error)
	currentFn func(ctx context.Context, sessionID uuid.UUID) (*models.ShopSession, error)
	logoutFn  func(ctx context.Context, shopID, sessionID uuid.UUID) error
}

func (f *fakeSessionsService) Start(ctx context.Context, params sessions.StartParams) (*models.ShopSession, error) {
	if f.startFn != nil {
		return f.startFn(ctx, params)
	}
	return &models.ShopSession{ID: uuid.New(), ShopID: params.ShopID}, nil
}

func (f *fakeSessionsService) VerifyAndTouch(_ context.Context, _, _ string) error { return nil }

func (f *fakeSessionsService) Current(ctx context.Context, sessionID uuid.UUID) (*models.ShopSession, error) {
	if f.currentFn != nil {
		return f.currentFn(ctx, sessionID)
	}
	return &models.ShopSession{ID: sessionID}, nil
}

func (f *fakeSessionsService) ListActive(_ context.Context, _ uuid.UUID) ([]models.ShopSession, error) {
	return nil, nil
}

func (f *fakeSessionsService) Logout(ctx context.Context, shopID, sessionID uuid.UUID) error {
	if f.logoutFn != nil {
		return f.logoutFn(ctx, shopID, sessionID)
	}
	return nil
}

func (f *fakeSessionsService) Sweep(_ context.Context, _ time.Time) (sessions.SweepResult, error) {
	return sessions.SweepResult{}, nil
}

type fakeShopsService struct {
	installFn  func(ctx context.Context, params shops.InstallParams) (*models.Shop, error)
	byIDFn     func(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	byDomainFn func(ctx context.Context, domain string) (*models.Shop, error)
}

func (f *fakeShopsService) Install(ctx context.Context, params shops.InstallParams) (*models.Shop, error) {
	if f.installFn != nil {
		return f.installFn(ctx, params)
	}
	return &models.Shop{ID: uuid.New(), Domain: params.Domain}, nil
}

func (f *fakeShopsService) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	if f.byIDFn != nil {
		return f.byIDFn(ctx, id)
	}
	return &models.Shop{ID: id}, nil
}

func (f *fakeShopsService) GetByDomain(ctx context.Context, domain string) (*models.Shop, error) {
	if f.byDomainFn != nil {
		return f.byDomainFn(ctx, domain)
	}
	return &models.Shop{ID: uuid.New(), Domain: domain}, nil
}

func (f *fakeShopsService) Deactivate(_ context.Context, _ uuid.UUID) error { return nil }

type fakeNotificationsService struct {
	listFn        func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
	unreadFn      func(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error)
	markReadFn    func(ctx context.Context, shopID, sessionID, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error)
	deleteFn      func(ctx context.Context, shopID, sessionID, notificationID uuid.UUID) error
	createFn      func(ctx context.Context, params notifications.CreateParams) (*models.Notification, error)
}

func (f *fakeNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return &notifications.ListResult{}, nil
}

func (f *fakeNotificationsService) UnreadCount(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error) {
	if f.unreadFn != nil {
		return f.unreadFn(ctx, shopID, sessionID)
	}
	return 0, nil
}

func (f *fakeNotificationsService) MarkRead(ctx context.Context, shopID, sessionID, notificationID uuid.UUID) error {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, shopID, sessionID, notificationID)
	}
	return nil
}

func (f *fakeNotificationsService) MarkAllRead(ctx context.Context, shopID, sessionID uuid.UUID) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, shopID, sessionID)
	}
	return 0, nil
}

func (f *fakeNotificationsService) Delete(ctx context.Context, shopID, sessionID, notificationID uuid.UUID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, shopID, sessionID, notificationID)
	}
	return nil
}

func (f *fakeNotificationsService) Create(ctx context.Context, params notifications.CreateParams) (*models.Notification, error) {
	if f.createFn != nil {
		return f.createFn(ctx, params)
	}
	return &models.Notification{ID: uuid.New(), ShopID: params.ShopID}, nil
}

func (f *fakeNotificationsService) PurgeDeleted(_ context.Context, _ time.Time, _ int) (int64, error) {
	return 0, nil
}

type fakeCompetitorsService struct {
	listFn    func(ctx context.Context, params competitors.ListParams) (*competitors.ListResult, error)
	reviewFn  func(ctx context.Context, shopID, suggestionID uuid.UUID, status enums.SuggestionStatus) error
	ingestFn  func(ctx context.Context, params competitors.IngestParams) (*models.CompetitorSuggestion, bool, error)
	summaryFn func(ctx context.Context, shopID uuid.UUID) (*competitors.SummaryResult, error)
}

func (f *fakeCompetitorsService) List(ctx context.Context, params competitors.ListParams) (*competitors.ListResult, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return &competitors.ListResult{}, nil
}

func (f *fakeCompetitorsService) Review(ctx context.Context, shopID, suggestionID uuid.UUID, status enums.SuggestionStatus) error {
	if f.reviewFn != nil {
		return f.reviewFn(ctx, shopID, suggestionID, status)
	}
	return nil
}

func (f *fakeCompetitorsService) Ingest(ctx context.Context, params competitors.IngestParams) (*models.CompetitorSuggestion, bool, error) {
	if f.ingestFn != nil {
		return f.ingestFn(ctx, params)
	}
	return &models.CompetitorSuggestion{ID: uuid.New()}, true, nil
}

func (f *fakeCompetitorsService) Summary(ctx context.Context, shopID uuid.UUID) (*competitors.SummaryResult, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx, shopID)
	}
	return &competitors.SummaryResult{}, nil
}

type fakeAnalyticsService struct {
	dashboardFn   func(ctx context.Context, shopID, sessionID uuid.UUID) (*analytics.DashboardReport, error)
	sessionsFn    func(ctx context.Context, shopID, sessionID uuid.UUID, windowDays int) (*analytics.SessionsReport, error)
	competitorsFn func(ctx context.Context, shopID, sessionID uuid.UUID) (*analytics.CompetitorsReport, error)
}

func (f *fakeAnalyticsService) Dashboard(ctx context.Context, shopID, sessionID uuid.UUID) (*analytics.DashboardReport, error) {
	if f.dashboardFn != nil {
		return f.dashboardFn(ctx, shopID, sessionID)
	}
	return &analytics.DashboardReport{}, nil
}

func (f *fakeAnalyticsService) Sessions(ctx context.Context, shopID, sessionID uuid.UUID, windowDays int) (*analytics.SessionsReport, error) {
	if f.sessionsFn != nil {
		return f.sessionsFn(ctx, shopID, sessionID, windowDays)
	}
	return &analytics.SessionsReport{WindowDays: windowDays}, nil
}

func (f *fakeAnalyticsService) Competitors(ctx context.Context, shopID, sessionID uuid.UUID) (*analytics.CompetitorsReport, error) {
	if f.competitorsFn != nil {
		return f.competitorsFn(ctx, shopID, sessionID)
	}
	return &analytics.CompetitorsReport{}, nil
}

type fakeExportService struct {
	writeFn func(ctx context.Context, shopID uuid.UUID, w io.Writer) (export.Counts, error)
}

func (f *fakeExportService) WriteCSV(ctx context.Context, shopID uuid.UUID, w io.Writer) (export.Counts, error) {
	if f.writeFn != nil {
		return f.writeFn(ctx, shopID, w)
	}
	return export.Counts{}, nil
}
