package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/authhybrid/backend/internal/observability"
)

// StructuredRequestLogger emits one slog line per request on the
// OTel-enriched logging path and records the duration histogram for
// auth endpoints. Health probes land at debug so the orchestrator's
// polling does not drown the log.
func StructuredRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := ""
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}

		if isAuthEndpoint(r.URL.Path) {
			endpoint := route
			if endpoint == "" {
				endpoint = r.URL.Path
			}
			observability.RecordAuthRequestDuration(r.Context(), endpoint, status, time.Since(start))
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		case strings.HasPrefix(r.URL.Path, "/health"):
			level = slog.LevelDebug
		}

		slog.Default().LogAttrs(r.Context(), level, "http.request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.String("client_ip", clientIPKey(r)),
			slog.String("user_agent", r.UserAgent()),
		)
	})
}

// isAuthEndpoint matches the credential lifecycle surface: the root
// auth handlers plus everything under /auth and /password.
func isAuthEndpoint(path string) bool {
	switch path {
	case "/register", "/verify-otp", "/resend-otp", "/login":
		return true
	}
	return strings.HasPrefix(path, "/auth/") || strings.HasPrefix(path, "/password/")
}
