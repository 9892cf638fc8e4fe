package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoplens/shoplens-backend/api/controllers"
	"github.com/shoplens/shoplens-backend/api/middleware"
	"github.com/shoplens/shoplens-backend/internal/analytics"
	"github.com/shoplens/shoplens-backend/internal/audit"
	"github.com/shoplens/shoplens-backend/internal/competitors"
	"github.com/shoplens/shoplens-backend/internal/export"
	"github.com/shoplens/shoplens-backend/internal/notifications"
	"github.com/shoplens/shoplens-backend/internal/products"
	"github.com/shoplens/shoplens-backend/internal/sessions"
	"github.com/shoplens/shoplens-backend/internal/shops"
	"github.com/shoplens/shoplens-backend/pkg/config"
	"github.com/shoplens/shoplens-backend/pkg/db"
	"github.com/shoplens/shoplens-backend/pkg/logger"
	"github.com/shoplens/shoplens-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Shops         shops.Service
	Sessions      sessions.Service
	Notifications notifications.Service
	Products      products.Service
	Competitors   competitors.Service
	Analytics     analytics.Service
	Audit         audit.Service
	Export        export.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	installPolicy := middleware.NewInstallRateLimitPolicy(cfg.RateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth/shopify", func(r chi.Router) {
		r.With(middleware.InstallRateLimit(installPolicy, redisClient, logg)).
			Get("/install", controllers.ShopifyInstall(cfg.Shopify, logg))
		r.With(middleware.InstallRateLimit(installPolicy, redisClient, logg)).
			Get("/callback", controllers.ShopifyCallback(svcs.Shops, svcs.Sessions, svcs.Audit, cfg, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(cfg.Session, svcs.Sessions, logg))
			r.Post("/logout", controllers.ShopifyLogout(svcs.Sessions, svcs.Audit, cfg.Session, logg))
			r.Get("/session", controllers.ShopifySession(svcs.Sessions, logg))
			r.Get("/export", controllers.ExportShopData(svcs.Export, svcs.Audit, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
				r.Get("/unread-count", controllers.UnreadNotificationCount(svcs.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, svcs.Audit, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
				r.Delete("/{notificationId}", controllers.DeleteNotification(svcs.Notifications, logg))
			})
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SessionAuth(cfg.Session, svcs.Sessions, logg))

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", controllers.AnalyticsDashboard(svcs.Analytics, logg))
			r.Get("/sessions", controllers.AnalyticsSessions(svcs.Analytics, logg))
			r.Get("/competitors", controllers.AnalyticsCompetitors(svcs.Analytics, logg))
		})

		r.Route("/competitors", func(r chi.Router) {
			r.Get("/", controllers.ListSuggestions(svcs.Competitors, logg))
			r.Get("/summary", controllers.SuggestionSummary(svcs.Competitors, logg))
			r.Post("/{suggestionId}/status", controllers.ReviewSuggestion(svcs.Competitors, svcs.Audit, logg))
		})

		r.Get("/products", controllers.ListProducts(svcs.Products, logg))
		r.Get("/audit", controllers.ListAuditEvents(svcs.Audit, logg))
	})

	r.Route("/api/ops", func(r chi.Router) {
		r.Use(middleware.OpsKeyGuard(cfg.Ops, logg))
		r.Post("/notifications", controllers.OpsCreateNotification(svcs.Notifications, svcs.Shops, logg))
		r.Post("/competitors", controllers.OpsIngestSuggestion(svcs.Competitors, svcs.Shops, logg))
		r.Post("/products", controllers.OpsSyncProducts(svcs.Products, svcs.Shops, logg))
	})

	return r
}
