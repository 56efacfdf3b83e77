package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/authhybrid/backend/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

// AppMetrics holds the instruments for the auth lifecycle: login and
// refresh outcomes, refresh-secret reuse, OTP and password-reset
// events, rate-limit decisions, and health checks.
type AppMetrics struct {
	authLoginCounter         metric.Int64Counter
	authRefreshCounter       metric.Int64Counter
	authRefreshReusedCounter metric.Int64Counter
	authLogoutCounter        metric.Int64Counter
	otpEventCounter          metric.Int64Counter
	passwordResetCounter     metric.Int64Counter
	mailDeliveryCounter      metric.Int64Counter
	rateLimitDecisionCounter metric.Int64Counter
	authReqDuration          metric.Float64Histogram
	healthCheckResultCounter metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := serviceResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	if err := RegisterMetrics(mp.Meter("authhybrid-backend")); err != nil {
		return nil, err
	}

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

// RegisterMetrics builds the application instruments on the meter and
// installs them for the Record helpers.
func RegisterMetrics(meter metric.Meter) error {
	loginCounter, err := meter.Int64Counter("auth.login.attempts")
	if err != nil {
		return err
	}
	refreshCounter, err := meter.Int64Counter("auth.refresh.attempts")
	if err != nil {
		return err
	}
	refreshReusedCounter, err := meter.Int64Counter(
		"auth.refresh.reused",
		metric.WithDescription("Rotations presented with an already-revoked refresh secret"),
	)
	if err != nil {
		return err
	}
	logoutCounter, err := meter.Int64Counter("auth.logout.attempts")
	if err != nil {
		return err
	}
	otpCounter, err := meter.Int64Counter("auth.otp.events")
	if err != nil {
		return err
	}
	resetCounter, err := meter.Int64Counter("auth.password_reset.events")
	if err != nil {
		return err
	}
	mailCounter, err := meter.Int64Counter("mail.delivery.events")
	if err != nil {
		return err
	}
	rateLimitCounter, err := meter.Int64Counter("http.rate_limit.decisions")
	if err != nil {
		return err
	}
	authReqDuration, err := meter.Float64Histogram(
		"auth.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of auth endpoint requests in seconds"),
	)
	if err != nil {
		return err
	}
	healthCounter, err := meter.Int64Counter("health.check.results")
	if err != nil {
		return err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		authLoginCounter:         loginCounter,
		authRefreshCounter:       refreshCounter,
		authRefreshReusedCounter: refreshReusedCounter,
		authLogoutCounter:        logoutCounter,
		otpEventCounter:          otpCounter,
		passwordResetCounter:     resetCounter,
		mailDeliveryCounter:      mailCounter,
		rateLimitDecisionCounter: rateLimitCounter,
		authReqDuration:          authReqDuration,
		healthCheckResultCounter: healthCounter,
	}
	metricsMu.Unlock()
	return nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordAuthLogin(ctx context.Context, provider, status string) {
	m := current()
	if m == nil {
		return
	}
	m.authLoginCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

func RecordAuthRefresh(ctx context.Context, status string) {
	m := current()
	if m == nil {
		return
	}
	m.authRefreshCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordRefreshReuse counts rotations presented with a revoked secret.
// The rotation itself still succeeds; this is the operator-visible
// signal for possible token theft.
func RecordRefreshReuse(ctx context.Context) {
	m := current()
	if m == nil {
		return
	}
	m.authRefreshReusedCounter.Add(ctx, 1)
}

func RecordAuthLogout(ctx context.Context, status string) {
	m := current()
	if m == nil {
		return
	}
	m.authLogoutCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func RecordOTPEvent(ctx context.Context, action, status string) {
	m := current()
	if m == nil {
		return
	}
	m.otpEventCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", status),
	))
}

func RecordPasswordResetEvent(ctx context.Context, action, status string) {
	m := current()
	if m == nil {
		return
	}
	m.passwordResetCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", status),
	))
}

func RecordMailDelivery(ctx context.Context, kind, status string) {
	m := current()
	if m == nil {
		return
	}
	m.mailDeliveryCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, decision string) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("decision", decision),
	))
}

func RecordAuthRequestDuration(ctx context.Context, endpoint string, status int, d time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.authReqDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.Int("status", status),
	))
}

func RecordHealthCheck(ctx context.Context, check, status string) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("status", status),
	))
}
