package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	loyaltyapp "github.com/loyalty/backend/internal/application/loyalty"
	"github.com/loyalty/backend/internal/application/session"
	"github.com/loyalty/backend/internal/domain/loyalty"
	"github.com/loyalty/backend/internal/infrastructure/config"
	"github.com/loyalty/backend/internal/infrastructure/logger"
	"github.com/loyalty/backend/internal/infrastructure/monitor"
	"github.com/loyalty/backend/internal/infrastructure/persistence"
	"github.com/loyalty/backend/internal/interfaces/http/handler"
	"github.com/loyalty/backend/internal/interfaces/http/middleware"
	"github.com/loyalty/backend/internal/interfaces/http/router"
	"github.com/loyalty/backend/internal/interfaces/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Loyalty Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Initialize repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	scanEventRepo := persistence.NewGormScanEventRepository(db.DB)

	// Initialize application services
	calculator := loyalty.NewPointsCalculator(
		cfg.Points.PerDollar,
		cfg.Points.Bonus100,
		cfg.Points.Bonus250,
		cfg.Points.Bonus500,
	)
	customerService := loyaltyapp.NewCustomerService(customerRepo)
	purchaseService := loyaltyapp.NewPurchaseService(purchaseRepo, scanEventRepo, customerRepo, calculator)
	statsService := loyaltyapp.NewStatsService(customerRepo, purchaseRepo, scanEventRepo)

	// Session coordinator with the purchase recorder behind it
	recorder := persistence.NewPurchaseRecorder(db, calculator, log)
	coordinator := session.NewCoordinator(recorder, session.Config{
		MatchWindow:         cfg.Session.MatchWindow,
		FormTimeout:         cfg.Session.FormTimeout,
		ConfirmationDisplay: cfg.Session.ConfirmationDisplay,
		CustomerInfoDisplay: cfg.Session.CustomerInfoDisplay,
		ErrorDisplay:        cfg.Session.ErrorDisplay,
	}, log)
	defer coordinator.Stop()

	// Print-spool monitor feeding the coordinator
	spoolMonitor := monitor.New(monitor.Config{
		Enabled:              cfg.Monitor.Enabled,
		Path:                 cfg.Monitor.Path,
		Debounce:             cfg.Monitor.Debounce,
		HousekeepingInterval: cfg.Monitor.HousekeepingInterval,
		ProcessedCapacity:    cfg.Monitor.ProcessedCapacity,
		ProcessedRetain:      cfg.Monitor.ProcessedRetain,
		QueueSize:            cfg.Monitor.QueueSize,
	}, coordinator, log)
	if cfg.Monitor.Enabled {
		if err := spoolMonitor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start spool monitor", zap.Error(err))
		}
		defer spoolMonitor.Stop()
		log.Info("Spool monitor started", zap.String("path", cfg.Monitor.Path))
	}

	// Initialize HTTP handlers
	customerHandler := handler.NewCustomerHandler(customerService, purchaseService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	adminHandler := handler.NewAdminHandler(coordinator, spoolMonitor, statsService, purchaseService)
	systemHandler := handler.NewSystemHandler(db)

	// Set gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create gin engine with middleware
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(customerHandler).
		Register(purchaseHandler).
		Register(adminHandler).
		Register(systemHandler)
	r.Setup()

	// Websocket endpoints live outside the versioned API group
	wsHandler := ws.NewHandler(coordinator, cfg.WebSocket, log)
	wsHandler.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.WriteTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}
