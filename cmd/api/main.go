package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/shoplens/shoplens-backend/api/routes"
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
	"github.com/shoplens/shoplens-backend/pkg/migrate"
	"github.com/shoplens/shoplens-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := buildServices(cfg, dbClient, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client, logg *logger.Logger) (routes.Services, error) {
	gormDB := dbClient.DB()

	shopsService, err := shops.NewService(shops.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	sessionsService, err := sessions.NewService(sessions.NewRepository(gormDB), redisClient, cfg.Session, cfg.Audit, logg)
	if err != nil {
		return routes.Services{}, err
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	productsRepo := products.NewRepository(gormDB)
	productsService, err := products.NewService(productsRepo)
	if err != nil {
		return routes.Services{}, err
	}

	competitorsService, err := competitors.NewService(competitors.NewRepository(gormDB), productsRepo, notificationsService, logg)
	if err != nil {
		return routes.Services{}, err
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(gormDB), redisClient, cfg.Cache, logg)
	if err != nil {
		return routes.Services{}, err
	}

	auditService, err := audit.NewService(audit.NewRepository(gormDB), cfg.Audit, logg)
	if err != nil {
		return routes.Services{}, err
	}

	exportService, err := export.NewService(export.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Shops:         shopsService,
		Sessions:      sessionsService,
		Notifications: notificationsService,
		Products:      productsService,
		Competitors:   competitorsService,
		Analytics:     analyticsService,
		Audit:         auditService,
		Export:        exportService,
	}, nil
}
