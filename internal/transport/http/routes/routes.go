package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/infra/config"
	"github.com/arklim/social-platform-auth/internal/infra/security"
	"github.com/arklim/social-platform-auth/internal/transport/http/handlers"
	"github.com/arklim/social-platform-auth/internal/transport/http/middleware"
	"github.com/arklim/social-platform-auth/internal/usecase"
)

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Auth        *usecase.AuthService
	Tokens      *security.TokenManager
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		authHandler := handlers.NewAuthHandler(deps.Auth)
		authHandler.RegisterRoutes(authGroup,
			buildRateLimitMiddlewares(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts),
			buildRateLimitMiddlewares(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts),
			buildRateLimitMiddlewares(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts),
		)

		userGroup := api.Group("/user")
		userGroup.Use(middleware.RequireAuth(deps.Tokens))

		userHandler := handlers.NewUserHandler(deps.Auth)
		userHandler.RegisterRoutes(userGroup)
	}

	return r
}

func buildRateLimitMiddlewares(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
