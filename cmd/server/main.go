package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apppayment "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/polar"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/storefront/backend/docs"
)

//	@title			Storefront Payments API
//	@version		1.0
//	@description	Payment status reconciliation for the storefront: admin actions, provider sync and webhooks

//	@contact.name	Storefront Payments Team

//	@host		localhost:8080
//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const (
	rateLimitSweepInterval = time.Minute
	rateLimitMaxIdle       = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bootstrap logger used while the telemetry pipeline is built
	bootLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}
	collector := telemetry.Collector{
		Endpoint:    cfg.Telemetry.CollectorEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: serviceName,
	}

	// OTEL logs pipeline. The application logger tees into it when enabled.
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Collector: collector,
		Enabled:   cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	var extraCores []zapcore.Core
	if loggerProvider.IsEnabled() {
		extraCores = append(extraCores, loggerProvider.NewZapCore(logger.ParseLevel(cfg.Log.Level)))
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, extraCores...)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting storefront payments service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", telemetry.ServiceVersion),
	)

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TraceConfig{
		Collector:     collector,
		Enabled:       cfg.Telemetry.Enabled,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	// Metrics
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Collector:      collector,
		Enabled:        cfg.Telemetry.Enabled,
		ExportInterval: cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}

	// Continuous profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName:   serviceName,
		ProfileGoroutines: true,
		ProfileMutexes:    true,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if cfg.Telemetry.ProfilingEnabled {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.DB.Use(telemetry.NewQueryTracing(cfg.Database.DBName, log)); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	txScope := persistence.NewTxScope(db.DB)

	// Event bus: payment events feed the audit log and the business metrics
	eventBus := event.NewBus(log)
	audit := event.NewPaymentAuditLogger(log)
	eventBus.Subscribe(audit, audit.EventTypes()...)

	paymentMetrics, err := telemetry.NewPaymentMetrics(meterProvider.Meter("storefront/payments"), log)
	if err != nil {
		log.Fatal("Failed to initialize payment metrics", zap.Error(err))
	}
	eventBus.Subscribe(paymentMetrics, paymentMetrics.EventTypes()...)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Sync lock, webhook idempotency store and token revocations
	coordination, err := cache.NewCoordination(ctx, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	if err != nil {
		log.Fatal("Failed to initialize coordination backend", zap.Error(err))
	}

	var revocations auth.RevocationList
	if client := coordination.Client(); client != nil {
		revocations = auth.NewRedisRevocationList(client, "storefront:revoked:")
	} else {
		revocations = auth.NewInMemoryRevocationList()
	}

	// Checkout provider. Without an access token sync is unavailable but
	// everything else keeps working.
	provider, err := polar.NewClient(&polar.Config{
		AccessToken: cfg.Polar.AccessToken,
		Sandbox:     cfg.Polar.Sandbox,
		BaseURL:     cfg.Polar.BaseURL,
		Timeout:     cfg.Polar.Timeout,
	}, log)
	if err != nil {
		if !errors.Is(err, polar.ErrMissingAccessToken) {
			log.Fatal("Failed to initialize polar client", zap.Error(err))
		}
		log.Warn("Polar access token not configured, provider sync is disabled")
	}

	webhookVerifier, err := polar.NewWebhookVerifier(cfg.Polar.WebhookSecret)
	if err != nil {
		log.Fatal("Failed to initialize polar webhook verifier", zap.Error(err))
	}

	// Application services
	paymentService := apppayment.NewPaymentService(apppayment.PaymentServiceConfig{
		PaymentRepo:    paymentRepo,
		OrderRepo:      orderRepo,
		TxScope:        txScope,
		EventPublisher: eventBus,
		Logger:         log,
	})
	syncConfig := apppayment.SyncServiceConfig{
		Payments: paymentService,
		Locker:   coordination.Locker,
		LockTTL:  cfg.Sync.LockTTL,
		Logger:   log,
	}
	if provider != nil {
		syncConfig.Provider = provider
	}
	syncService := apppayment.NewSyncService(syncConfig)
	webhookService := apppayment.NewWebhookService(paymentService, coordination.Idempotency, log)

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		go rateLimiter.RunSweeper(ctx, rateLimitSweepInterval, rateLimitMaxIdle)
	}

	meter := meterProvider.Meter("storefront/http")
	if !meterProvider.IsEnabled() {
		meter = nil
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:      log,
		HTTP:        cfg.HTTP,
		Swagger:     cfg.Swagger,
		ServiceName: serviceName,
		Tracing:     cfg.Telemetry.Enabled,
		Profiling:   cfg.Telemetry.ProfilingEnabled,
		Meter:       meter,
		RateLimiter: rateLimiter,
		Security:    securityConfig(cfg),
	})

	jwtService := auth.NewJWTService(cfg.JWT)
	authenticate := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:  jwtService,
		Revocations: revocations,
		Logger:      log,
	})

	routes := router.Mount(engine,
		router.AdminPaymentRoutes(handler.NewPaymentHandler(paymentService, syncService), authenticate, middleware.RequireAdmin()),
		router.OrderPaymentRoutes(handler.NewOrderPaymentHandler(paymentService), authenticate),
		router.WebhookRoutes(handler.NewPolarWebhookHandler(webhookVerifier, webhookService, paymentMetrics)),
	)

	router.MountSystemRoutes(engine, handler.NewSystemHandler(telemetry.ServiceVersion, map[string]handler.Pinger{
		"database":     db,
		"coordination": coordination,
	}), cfg.Swagger)

	for _, route := range routes {
		log.Debug("Route registered",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
			zap.String("description", route.Description),
		)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr), zap.String("coordination", coordination.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}
	if err := coordination.Close(); err != nil {
		log.Error("Failed to close coordination backend", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Failed to stop profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown log provider", zap.Error(err))
	}

	log.Info("Server exited")
}

func securityConfig(cfg *config.Config) middleware.SecurityConfig {
	sec := middleware.DefaultSecurityConfig()
	sec.HSTSEnabled = cfg.App.IsProduction()
	return sec
}
