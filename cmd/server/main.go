package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appchannel "github.com/omnicrm/backend/internal/application/channel"
	dlqapp "github.com/omnicrm/backend/internal/application/deadletter"
	orderapp "github.com/omnicrm/backend/internal/application/order"
	"github.com/omnicrm/backend/internal/domain/channel"
	infrachannel "github.com/omnicrm/backend/internal/infrastructure/channel"
	"github.com/omnicrm/backend/internal/infrastructure/config"
	"github.com/omnicrm/backend/internal/infrastructure/logger"
	"github.com/omnicrm/backend/internal/infrastructure/persistence"
	"github.com/omnicrm/backend/internal/infrastructure/resilience"
	"github.com/omnicrm/backend/internal/infrastructure/scheduler"
	"github.com/omnicrm/backend/internal/infrastructure/telemetry"
	"github.com/omnicrm/backend/internal/interfaces/http/handler"
	"github.com/omnicrm/backend/internal/interfaces/http/middleware"
	"github.com/omnicrm/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting OmniCRM Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Metrics
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	if meterProvider.IsEnabled() {
		log.Info("Metrics export enabled",
			zap.String("endpoint", cfg.Telemetry.CollectorEndpoint),
			zap.Duration("interval", cfg.Telemetry.ExportInterval))
	}

	syncMetrics, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
		Meter:  meterProvider.Meter("omnicrm/sync"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create sync metrics", zap.Error(err))
	}

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	deadLetterRepo := persistence.NewGormDeadLetterRepository(db.DB)

	// Channel adapters, each with an isolated simulator behind its own
	// resilience decorator. The first-party website fails at half the
	// marketplace rate.
	resilienceCfg := resilience.Config{
		RetryAttempts: cfg.Resilience.RetryAttempts,
		RetryBackoff:  cfg.Resilience.RetryBackoff,
		MaxConcurrent: cfg.Resilience.MaxConcurrent,
		Breaker: resilience.BreakerConfig{
			FailureThreshold: cfg.Resilience.FailureThreshold,
			MinimumCalls:     cfg.Resilience.MinimumCalls,
			Window:           cfg.Resilience.Window,
			CooldownPeriod:   cfg.Resilience.CooldownPeriod,
			HalfOpenProbes:   cfg.Resilience.HalfOpenProbes,
		},
	}
	adapters := []channel.Adapter{
		resilience.Wrap(infrachannel.NewAmazonAdapter(
			infrachannel.NewSimulator(cfg.Channel.FailureRate), cfg.Channel.AmazonOrders), resilienceCfg, log),
		resilience.Wrap(infrachannel.NewFlipkartAdapter(
			infrachannel.NewSimulator(cfg.Channel.FailureRate), cfg.Channel.FlipkartOrders), resilienceCfg, log),
		resilience.Wrap(infrachannel.NewWebsiteAdapter(
			infrachannel.NewSimulator(cfg.Channel.FailureRate*0.5), cfg.Channel.WebsiteOrders), resilienceCfg, log),
	}

	// Application services
	deadLetterService := dlqapp.NewService(deadLetterRepo, log)
	syncService := appchannel.NewSyncService(adapters, orderRepo, deadLetterService, syncMetrics, log)
	orderService := orderapp.NewService(orderRepo)

	// Periodic channel sync
	syncScheduler := scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
		Interval:   cfg.Scheduler.SyncInterval,
		RunOnStart: true,
	}, syncService, log)
	if cfg.Scheduler.Enabled {
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			if err := syncScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()
		log.Info("Sync scheduler started", zap.Duration("interval", cfg.Scheduler.SyncInterval))
	}

	// Dead letter backlog gauge
	backlogCtx, stopBacklog := context.WithCancel(context.Background())
	defer stopBacklog()
	go reportDeadLetterBacklog(backlogCtx, deadLetterService, syncMetrics, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Simple liveness probe outside API versioning
	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewOrderHandler(orderService)).
		Register(handler.NewSyncHandler(syncScheduler, syncService)).
		Register(handler.NewDeadLetterHandler(deadLetterService)).
		Register(handler.NewSystemHandler(db, syncService, deadLetterService))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// gormLogLevel maps the application log level to a GORM logger level
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}

// reportDeadLetterBacklog periodically records the pending dead letter count
// so the backlog is visible without polling the admin API
func reportDeadLetterBacklog(ctx context.Context, dlq *dlqapp.Service, metrics *telemetry.SyncMetrics, log *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := dlq.PendingCount(ctx)
			if err != nil {
				log.Warn("Failed to count pending dead letters", zap.Error(err))
				continue
			}
			metrics.RecordDeadLetterBacklog(ctx, pending)
		}
	}
}
