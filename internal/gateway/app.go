package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/saransh1220/snaplabel/internal/gateway/middleware"
	"github.com/saransh1220/snaplabel/internal/modules/analysis"
	"github.com/saransh1220/snaplabel/internal/modules/filestorage"
	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/config"
	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/database"
	"github.com/saransh1220/snaplabel/pkg/migration"
)

// App is the fully wired HTTP application shared by the server and the
// Lambda entrypoint.
type App struct {
	Handler http.Handler

	closers []func()
}

// NewApp connects the stores selected by cfg, builds the modules and returns
// the middleware-wrapped router. Call Close when done.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var db *sqlx.DB
	if cfg.Store.Backend == "postgres" {
		conn, err := database.NewPostgresDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { conn.Close() })
		db = conn
		logger.Info("database connected", "host", cfg.Database.Host, "db", cfg.Database.DBName)

		if err := migration.AutoMigrate(cfg.Database.URL(), cfg.Server.MigrationsPath, logger); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	var rdb *redis.Client
	if cfg.Store.CacheEnabled {
		client, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("result cache disabled", "error", err)
		} else {
			app.closers = append(app.closers, func() { client.Close() })
			rdb = client
		}
	}

	storage, err := filestorage.NewModule(ctx, cfg.FileStorage, cfg.Server.PublicURL, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	analysisModule, err := analysis.NewModule(ctx, analysis.Deps{
		Analyzer:   cfg.Analyzer,
		Store:      cfg.Store,
		DB:         db,
		Redis:      rdb,
		Storage:    storage.Service(),
		Registerer: reg,
		Logger:     logger,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, analysisModule.Close)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	if !authMiddleware.Enabled() {
		logger.Warn("JWT_SECRET not set, API routes are unauthenticated")
	}

	router := SetupRoutes(RouterConfig{
		AnalysisHandler: analysisModule.HTTPHandler(),
		UploadHandler:   storage.UploadHandler(),
		AuthMiddleware:  authMiddleware,
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	app.Handler = Chain(router, middleware.NewMetrics(reg), ChainConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})
	return app, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
