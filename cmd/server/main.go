package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/creditmonitor/backend/internal/application/identity"
	"github.com/creditmonitor/backend/internal/application/importer"
	ledgerapp "github.com/creditmonitor/backend/internal/application/ledger"
	reportapp "github.com/creditmonitor/backend/internal/application/report"
	"github.com/creditmonitor/backend/internal/infrastructure/auth"
	"github.com/creditmonitor/backend/internal/infrastructure/config"
	"github.com/creditmonitor/backend/internal/infrastructure/logger"
	"github.com/creditmonitor/backend/internal/infrastructure/persistence"
	"github.com/creditmonitor/backend/internal/interfaces/http/handler"
	"github.com/creditmonitor/backend/internal/interfaces/http/middleware"
	"github.com/creditmonitor/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting credit ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Schema sync keeps development setups working without the migrate
	// binary; production schemas are managed through migrations/.
	if err := persistence.AutoMigrate(db.DB); err != nil {
		log.Warn("Schema sync failed, continuing with existing schema", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	tm := persistence.NewGormTransactionManager(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	clientService := ledgerapp.NewClientService(clientRepo, invoiceRepo, log)
	invoiceService := ledgerapp.NewInvoiceService(clientRepo, invoiceRepo, paymentRepo, log)
	paymentService := ledgerapp.NewPaymentService(paymentRepo, tm, log)
	importService := importer.NewService(tm, log)
	reportService := reportapp.NewService(clientRepo, invoiceRepo, paymentRepo, log)

	// HTTP engine and cross-cutting middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	requireAuth := middleware.RequireAuth(jwtService, userRepo)
	requireAdmin := middleware.RequireAdmin()

	loginLimiter := func(c *gin.Context) { c.Next() }
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(
			cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer limiter.Stop()
		loginLimiter = middleware.RateLimit(limiter)
	}
	uploadLimit := middleware.BodyLimit(cfg.HTTP.MaxUploadSize)

	router.NewRouter(engine).
		Register(handler.NewAuthHandler(authService, requireAuth, requireAdmin, loginLimiter)).
		Register(handler.NewClientHandler(clientService, requireAuth, requireAdmin)).
		Register(handler.NewInvoiceHandler(invoiceService, importService, cfg.HTTP.MaxUploadSize, requireAuth, requireAdmin, uploadLimit)).
		Register(handler.NewPaymentHandler(paymentService, requireAuth, requireAdmin)).
		Register(handler.NewReportHandler(reportService, requireAuth)).
		Register(handler.NewSystemHandler(db, cfg.App.Name)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
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
