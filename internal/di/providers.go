package di

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/authhybrid/backend/internal/app"
	"github.com/authhybrid/backend/internal/config"
	"github.com/authhybrid/backend/internal/database"
	"github.com/authhybrid/backend/internal/health"
	"github.com/authhybrid/backend/internal/http/handler"
	"github.com/authhybrid/backend/internal/http/middleware"
	"github.com/authhybrid/backend/internal/http/router"
	"github.com/authhybrid/backend/internal/mail"
	"github.com/authhybrid/backend/internal/observability"
	"github.com/authhybrid/backend/internal/repository"
	"github.com/authhybrid/backend/internal/security"
	"github.com/authhybrid/backend/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewAccountRepository,
	repository.NewRefreshTokenRepository,
	repository.NewEmailOTPRepository,
	repository.NewPasswordResetRepository,
	repository.NewConversationRepository,
	repository.NewMessageRepository,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	provideCookieManager,
)

var ServiceSet = wire.NewSet(
	mail.New,
	service.NewGitHubClient,
	wire.Bind(new(service.GitHubClient), new(*service.HTTPGitHubClient)),
	service.NewTokenService,
	service.NewOTPService,
	service.NewPasswordResetService,
	provideAuthService,
	service.NewSessionService,
	service.NewConversationService,
	service.NewMessageService,
)

var HTTPSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewAuthHandler,
	handler.NewPasswordHandler,
	handler.NewProfileHandler,
	handler.NewConversationHandler,
	handler.NewHealthHandler,
	provideRouterDependencies,
	router.New,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

func provideReadinessProbeRunner(db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	return health.NewProbeRunner(0,
		health.NewDBChecker(db),
		health.NewRedisChecker(redisClient),
	)
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.AccessTokenSecret, cfg.SessionSecret, cfg.AccessTokenTTL, cfg.SessionTTL)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.IsProduction(), cfg.RefreshTokenTTL, cfg.SessionTTL)
}

func provideAuthService(
	cfg *config.Config,
	users repository.UserRepository,
	accounts repository.AccountRepository,
	tokens *service.TokenService,
	otps *service.OTPService,
	github service.GitHubClient,
	logger *slog.Logger,
) *service.AuthService {
	return service.NewAuthService(users, accounts, tokens, otps, github, cfg.BcryptCost, logger)
}

func provideRouterDependencies(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	authHandler *handler.AuthHandler,
	passwordHandler *handler.PasswordHandler,
	profileHandler *handler.ProfileHandler,
	conversationHandler *handler.ConversationHandler,
	healthHandler *handler.HealthHandler,
	jwt *security.JWTManager,
	redisClient redis.UniversalClient,
) router.Dependencies {
	// Redis gives cross-instance limits and can fail open; the local
	// fallback is per-instance and never errors.
	var limiter middleware.Limiter
	mode := middleware.FailClosed
	if redisClient != nil {
		limiter = middleware.NewRedisFixedWindowLimiter(redisClient, "rl")
		mode = middleware.FailOpen
	} else {
		limiter = middleware.NewLocalFixedWindowLimiter()
	}
	return router.Dependencies{
		UserHandler:         userHandler,
		AuthHandler:         authHandler,
		PasswordHandler:     passwordHandler,
		ProfileHandler:      profileHandler,
		ConversationHandler: conversationHandler,
		HealthHandler:       healthHandler,
		JWTManager:          jwt,
		CORSOrigins:         cfg.AllowedOrigins(),
		AuthRateLimitRPM:    cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:     cfg.APIRateLimitPerMin,
		Limiter:             limiter,
		LimiterMode:         mode,
		EnableOTelHTTP:      cfg.OTELTracingEnabled || cfg.OTELMetricsEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: h,
	}
}
