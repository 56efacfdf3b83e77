package response

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/authhybrid/backend/internal/apperr"
)

// JSON writes v with the given status. Encoding failures are logged;
// the status line has already gone out by then.
func JSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", slog.String("error", err.Error()))
	}
}

// Error maps a service error to the flat {"error": message} body.
// Internal causes are logged here, once, and never leak to clients.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", slog.String("error", err.Error()))
	}
	JSON(ctx, w, status, map[string]string{"error": apperr.ClientMessage(err)})
}

// Message is the {"message": ...} success body many auth endpoints
// return.
func Message(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	JSON(ctx, w, status, map[string]string{"message": msg})
}
