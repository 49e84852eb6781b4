package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/viagens-moz/intercity/internal/api/handlers"
	"github.com/viagens-moz/intercity/internal/api/routes"
	"github.com/viagens-moz/intercity/internal/config"
	"github.com/viagens-moz/intercity/internal/repository/postgres"
	"github.com/viagens-moz/intercity/internal/repository/rediscache"
	"github.com/viagens-moz/intercity/internal/service/assignment"
	"github.com/viagens-moz/intercity/internal/service/booking"
	"github.com/viagens-moz/intercity/internal/service/matching"
	"github.com/viagens-moz/intercity/internal/service/pricing"
	"github.com/viagens-moz/intercity/internal/service/report"
	"github.com/viagens-moz/intercity/internal/service/roster"
	"github.com/viagens-moz/intercity/pkg/cache"
	"github.com/viagens-moz/intercity/pkg/database"
	"github.com/viagens-moz/intercity/pkg/logger"
	"github.com/viagens-moz/intercity/pkg/monitoring"
	"github.com/viagens-moz/intercity/pkg/websocket"
)

const poolStatsInterval = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting intercity booking service",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
	)

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
		LogLevel:   cfg.NewRelic.LogLevel,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
		nrApp = monitoring.Disabled()
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized successfully",
			logger.String("app_name", cfg.NewRelic.AppName),
			logger.Bool("enabled", true))
	} else {
		appLogger.Info("New Relic APM disabled")
	}
	defer nrApp.Shutdown(10 * time.Second)

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
		DialTimeout: cfg.Redis.DialTimeout,
		ReadTimeout: cfg.Redis.ReadTimeout,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer cache.Close(redisClient)

	appLogger.Info("Connected to Redis successfully")

	// Initialize PostgreSQL
	postgresDB, err := database.NewPostgresDB(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConnections,
		MaxIdle:  cfg.Database.MaxIdleConns,
		MaxLife:  cfg.Database.MaxLifetime,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer postgresDB.Close()

	appLogger.Info("Connected to PostgreSQL successfully")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, postgresDB); err != nil {
			appLogger.Fatal("Failed to apply schema", logger.Err(err))
		}
		appLogger.Info("Database schema applied")
	}

	// Route line and fare table
	lineRoutes, err := config.LoadRoutes(cfg.Routes.File)
	if err != nil {
		appLogger.Fatal("Failed to load routes", logger.Err(err), logger.String("file", cfg.Routes.File))
	}
	appLogger.Info("Route line loaded",
		logger.Int("stops", len(lineRoutes.Line)),
		logger.Int("fares", lineRoutes.Fares.Len()),
	)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(appLogger.Named("websocket"))
	go wsHub.Run(ctx)

	// Repositories
	driverRepo := postgres.NewDriverRepository(postgresDB)
	tripRepo := postgres.NewTripRepository(postgresDB)
	parcelRepo := postgres.NewParcelRepository(postgresDB)

	rosterCache := rediscache.NewRosterCache(redisClient, cfg.Cache.TTLRoster)
	idempotency := rediscache.NewIdempotencyStore(redisClient, cfg.Cache.TTLIdempotency)

	// Services
	pricingService := pricing.NewService(lineRoutes.Line, lineRoutes.Fares, pricing.Config{
		BaseFare: cfg.Pricing.BaseFare,
		StepFare: cfg.Pricing.StepFare,
	})
	rosterService := roster.NewService(driverRepo, rosterCache, lineRoutes.Line, wsHub, appLogger.Named("roster"))

	h := handlers.NewHandlers(handlers.Services{
		Pricing: pricingService,
		Roster:  rosterService,
		Booking: booking.NewService(tripRepo, parcelRepo, pricingService, idempotency, wsHub, nrApp, appLogger.Named("booking")),
		Assignment: assignment.NewService(
			tripRepo, parcelRepo, rosterService, matching.NewMatcher(lineRoutes.Line), wsHub, nrApp, appLogger.Named("assignment"),
		),
		Reports: report.NewService(tripRepo, parcelRepo, appLogger.Named("report")),
	}, wsHub, appLogger, handlers.Options{
		DefaultSharePercent: cfg.Report.ProfitShare * 100,
		WSReadBufferSize:    cfg.WebSocket.ReadBufferSize,
		WSWriteBufferSize:   cfg.WebSocket.WriteBufferSize,
	})

	// Initialize Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Setup all routes
	var nrApplication *newrelic.Application
	if nrApp.IsEnabled() {
		nrApplication = nrApp.Application
	}
	routes.SetupRoutes(router, h, nrApplication)

	appLogger.Info("Routes configured successfully")

	if nrApp.IsEnabled() {
		go reportPoolStats(ctx, nrApp, postgresDB, redisClient)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}
	stop()

	appLogger.Info("Server stopped gracefully")
}

// reportPoolStats pushes connection pool gauges until ctx is cancelled
func reportPoolStats(ctx context.Context, nrApp *monitoring.NewRelicApp, db *sql.DB, rdb *redis.Client) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			nrApp.RecordDatabasePoolStats(database.GetPoolStats(db))
			nrApp.RecordRedisPoolStats(cache.GetClientStats(rdb))
		}
	}
}
