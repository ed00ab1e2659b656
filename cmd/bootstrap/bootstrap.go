package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointment-dashboard/config"
	"appointment-dashboard/internal/converter"
	deliveryHttp "appointment-dashboard/internal/delivery/http"
	"appointment-dashboard/internal/delivery/http/handler"
	"appointment-dashboard/internal/delivery/http/middleware"
	"appointment-dashboard/internal/domain/repository"
	"appointment-dashboard/internal/infrastructure/cache"
	"appointment-dashboard/internal/infrastructure/database"
	"appointment-dashboard/internal/infrastructure/metrics"
	"appointment-dashboard/internal/infrastructure/upstream"
	repositoryImpl "appointment-dashboard/internal/repository"
	"appointment-dashboard/internal/service"
	"appointment-dashboard/internal/usecase"
	"appointment-dashboard/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	FeedSync    *service.FeedSyncService
	Server      *http.Server

	cancel context.CancelFunc
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	location, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.App.Timezone, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	// Initialize database (optional, audit trail only)
	if cfg.DB.Enabled() {
		db, err := database.NewPostgresConnection(cfg.DB, gormLogLevel(cfg.App.Env))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = db
	} else {
		logrus.Info("DB_HOST not set, audit trail disabled")
	}

	// Initialize Redis (optional, shared snapshot store)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
	} else {
		logrus.Info("REDIS_HOST not set, keeping the snapshot in memory")
	}

	// Initialize all layers
	app.initialize(ctx, cfg, location)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

func gormLogLevel(env string) logger.LogLevel {
	if env == "production" {
		return logger.Warn
	}
	return logger.Info
}

func feedQuery(filters config.UpstreamFilters) upstream.FeedQuery {
	return upstream.FeedQuery{
		City:      filters.City,
		Doctor:    filters.Doctor,
		Status:    filters.Status,
		Procedure: filters.Procedure,
		Insurance: filters.Insurance,
	}
}

// initialize creates the feed session and the HTTP server
func (app *App) initialize(ctx context.Context, cfg *config.Config, location *time.Location) {
	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	feedMetrics := metrics.NewFeedMetrics(registry)

	// Initialize repositories
	var snapshotRepo repository.SnapshotRepository
	if app.RedisClient != nil {
		snapshotRepo = repositoryImpl.NewRedisSnapshotRepository(app.RedisClient)
	} else {
		snapshotRepo = repositoryImpl.NewMemorySnapshotRepository()
	}

	// Initialize services
	auditService := service.NewNoopAuditService()
	var auditLogHandler *handler.AuditLogHandler
	if app.DB != nil {
		auditLogRepo := repositoryImpl.NewAuditLogRepository()
		auditService = service.NewAuditService(app.DB, log, auditLogRepo)
		auditLogUsecase := usecase.NewAuditLogUsecase(app.DB, log, auditLogRepo)
		auditLogHandler = handler.NewAuditLogHandler(auditLogUsecase, customValidator)
	}

	feedClient := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	normalizer := converter.NewNormalizer(location)
	app.FeedSync = service.NewFeedSyncService(feedClient, snapshotRepo, normalizer, feedMetrics, log, cfg.Upstream.PollInterval).
		WithQuery(feedQuery(cfg.Upstream.Filters))
	app.FeedSync.Start(ctx)

	aggregator := service.NewMetricsAggregator(cfg.Metrics.CompletedIncludesPostSurgery)

	// Initialize usecases
	dashboardUsecase := usecase.NewDashboardUsecase(log, snapshotRepo, app.FeedSync, aggregator, auditService, location)

	// Initialize handlers
	dashboardHandler := handler.NewDashboardHandler(dashboardUsecase, customValidator)

	// Initialize middleware
	requestMiddleware := middleware.NewRequestMiddleware(log)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(dashboardHandler, auditLogHandler, requestMiddleware, corsMiddleware, registry)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Stop polling and close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close stops the feed session and closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Cancel first so an in-flight fetch does not hold up Stop
	if app.cancel != nil {
		app.cancel()
	}
	if app.FeedSync != nil {
		app.FeedSync.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
