package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/authhybrid/backend/internal/http/handler"
	"github.com/authhybrid/backend/internal/http/middleware"
	"github.com/authhybrid/backend/internal/security"
)

type Dependencies struct {
	UserHandler         *handler.UserHandler
	AuthHandler         *handler.AuthHandler
	PasswordHandler     *handler.PasswordHandler
	ProfileHandler      *handler.ProfileHandler
	ConversationHandler *handler.ConversationHandler
	HealthHandler       *handler.HealthHandler
	JWTManager          *security.JWTManager
	CORSOrigins         []string
	AuthRateLimitRPM    int
	APIRateLimitRPM     int
	Limiter             middleware.Limiter
	LimiterMode         middleware.FailureMode
	EnableOTelHTTP      bool
}

// New wires the HTTP surface: the cookie-driven auth endpoints at the
// root, password reset under /password, and the authenticated profile
// and messaging routes behind the Bearer middleware.
func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	limiter := dep.Limiter
	if limiter == nil {
		limiter = middleware.NewLocalFixedWindowLimiter()
	}
	apiLimiter := middleware.NewRateLimiter(limiter, dep.APIRateLimitRPM, time.Minute, dep.LimiterMode, "api").Middleware()
	authLimiter := middleware.NewRateLimiter(limiter, dep.AuthRateLimitRPM, time.Minute, dep.LimiterMode, "auth").Middleware()
	r.Use(apiLimiter)

	r.Get("/health", dep.HealthHandler.Health)
	r.Get("/health/ready", dep.HealthHandler.Ready)

	r.With(authLimiter).Post("/register", dep.UserHandler.Register)
	r.With(authLimiter).Post("/verify-otp", dep.UserHandler.VerifyOTP)
	r.With(authLimiter).Post("/resend-otp", dep.UserHandler.ResendOTP)
	r.With(authLimiter).Post("/login", dep.UserHandler.Login)

	r.Route("/auth", func(r chi.Router) {
		r.With(authLimiter).Post("/google", dep.AuthHandler.Google)
		r.With(authLimiter).Post("/github", dep.AuthHandler.GitHub)
		r.With(authLimiter).Post("/refresh", dep.AuthHandler.Refresh)
		r.Post("/logout", dep.AuthHandler.Logout)
	})

	r.Route("/password", func(r chi.Router) {
		r.With(authLimiter).Post("/request-password-reset", dep.PasswordHandler.RequestReset)
		r.With(authLimiter).Post("/reset", dep.PasswordHandler.Reset)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(dep.JWTManager))
		r.Get("/me", dep.ProfileHandler.Me)
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", dep.ConversationHandler.Create)
			r.Get("/", dep.ConversationHandler.List)
			r.Get("/{id}/messages", dep.ConversationHandler.ListMessages)
			r.Post("/{id}/messages", dep.ConversationHandler.SendMessage)
			r.Post("/{id}/read", dep.ConversationHandler.MarkRead)
		})
	})

	if dep.EnableOTelHTTP {
		return otelhttp.NewHandler(r, "http.server")
	}
	return r
}
