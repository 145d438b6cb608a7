package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/infra/config"
	"github.com/arklim/social-platform-accounts/internal/transport/http/handlers"
	"github.com/arklim/social-platform-accounts/internal/transport/http/middleware"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Passwords    *usecase.PasswordService
	Accounts     *usecase.AccountService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
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
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.HTTP.AllowedOrigins))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err != nil {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	} else {
		r.Use(metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)

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
		accountsGroup := api.Group("/accounts")

		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration)
		registerHandlers := appendLimited(deps, "account_register_ip", registerLimit(deps), registrationHandler.Register)
		accountsGroup.POST("/register", registerHandlers...)
		accountsGroup.POST("/activate", registrationHandler.Activate)

		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		loginHandlers := appendLimited(deps, "account_login_ip", loginLimit(deps), authHandler.Login)
		accountsGroup.POST("/login", loginHandlers...)
		accountsGroup.POST("/token/refresh", authHandler.Refresh)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.Passwords)
		passwordGroup := accountsGroup.Group("/password")
		passwordGroup.POST("/change", authMiddleware, passwordHandler.Change)
		forgotHandlers := appendLimited(deps, "password_forgot_ip", forgotLimit(deps), passwordHandler.Forgot)
		passwordGroup.POST("/forgot", forgotHandlers...)
		passwordGroup.POST("/reset", passwordHandler.Reset)

		accountHandler := handlers.NewAccountHandler(deps.Services.Accounts)
		accountsGroup.GET("/profile", authMiddleware, accountHandler.Profile)
		accountsGroup.GET("", authMiddleware, accountHandler.List)
		accountsGroup.POST("/unlock", authMiddleware, accountHandler.Unlock)
	}

	return r
}

func loginLimit(deps Dependencies) int {
	if deps.Config == nil {
		return 0
	}
	return deps.Config.RateLimit.LoginMaxAttempts
}

func registerLimit(deps Dependencies) int {
	if deps.Config == nil {
		return 0
	}
	return deps.Config.RateLimit.RegisterMaxAttempts
}

func forgotLimit(deps Dependencies) int {
	if deps.Config == nil {
		return 0
	}
	return deps.Config.RateLimit.PasswordResetMaxAttempts
}

// appendLimited prefixes the handler with an IP rate limit when one is configured.
func appendLimited(deps Dependencies, ruleName string, limit int, handler gin.HandlerFunc) []gin.HandlerFunc {
	if deps.RateLimiter == nil || limit <= 0 {
		return []gin.HandlerFunc{handler}
	}

	window := time.Minute
	if deps.Config != nil && deps.Config.RateLimit.WindowDuration > 0 {
		window = deps.Config.RateLimit.WindowDuration
	}

	rule := middleware.RateLimitRule{
		Name:       ruleName,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule), handler}
}
