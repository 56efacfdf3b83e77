package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// Audit emits a structured security-event log line tied to the
// request's trace context when one is active.
func Audit(r *http.Request, event string, attrs ...any) {
	base := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", r.Header.Get("X-Request-Id"),
	}
	AuditCtx(r.Context(), event, append(base, attrs...)...)
}

// AuditCtx is the context-only variant for code below the HTTP layer.
func AuditCtx(ctx context.Context, event string, attrs ...any) {
	msg := "audit"
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		msg = fmt.Sprintf("audit trace_id=%s span_id=%s", sc.TraceID().String(), sc.SpanID().String())
	}
	base := []any{"event", event}
	base = append(base, attrs...)
	slog.InfoContext(ctx, msg, base...)
}
