package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig holds what the global middleware chain needs
type EngineConfig struct {
	Logger      *zap.Logger
	HTTP        config.HTTPConfig
	Swagger     config.SwaggerConfig
	ServiceName string
	Tracing     bool
	Profiling   bool
	// Meter is nil when metrics export is disabled
	Meter metric.Meter
	// RateLimiter is nil when rate limiting is disabled
	RateLimiter *middleware.RateLimiter
	Security    middleware.SecurityConfig
}

// NewEngine creates a gin engine with the global middleware chain installed.
// Order matters: the request id feeds the logger, and the tracing span must
// exist before metrics and profiling labels are attached.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.Tracing,
	})...)
	engine.Use(
		middleware.HTTPMetrics(cfg.Meter, log),
		middleware.Profiling(cfg.Profiling),
	)

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(
		middleware.CORSWithConfig(cors),
		middleware.SecureWithConfig(cfg.Security),
	)

	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	return engine
}

// MountSystemRoutes registers the probes and the API documentation outside /api
func MountSystemRoutes(engine *gin.Engine, system *handler.SystemHandler, swagger config.SwaggerConfig) {
	engine.GET("/health", system.Health)
	engine.GET("/ready", system.Ready)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    swagger.Enabled,
			AllowedIPs: swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
}
