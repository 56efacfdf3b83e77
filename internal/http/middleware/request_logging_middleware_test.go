package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/authhybrid/backend/internal/observability"
)

func TestIsAuthEndpoint(t *testing.T) {
	cases := map[string]bool{
		"/register":                        true,
		"/verify-otp":                      true,
		"/resend-otp":                      true,
		"/login":                           true,
		"/auth/refresh":                    true,
		"/auth/logout":                     true,
		"/password/request-password-reset": true,
		"/password/reset":                  true,
		"/health":                          false,
		"/me":                              false,
		"/conversations":                   false,
	}
	for path, want := range cases {
		if got := isAuthEndpoint(path); got != want {
			t.Errorf("isAuthEndpoint(%q) = %v, want %v", path, got, want)
		}
	}
}

func collectAuthDuration(t *testing.T, reader *sdkmetric.ManualReader) []metricdata.HistogramDataPoint[float64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "auth.request.duration" {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			return hist.DataPoints
		}
	}
	return nil
}

func TestRequestLoggerRecordsAuthDuration(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	if err := observability.RegisterMetrics(mp.Meter(t.Name())); err != nil {
		t.Fatalf("register metrics: %v", err)
	}

	h := StructuredRequestLogger(okHandler())
	for _, path := range []string{"/login", "/auth/refresh", "/health"} {
		r := httptest.NewRequest(http.MethodPost, path, nil)
		h.ServeHTTP(httptest.NewRecorder(), r)
	}

	points := collectAuthDuration(t, reader)
	var total uint64
	for _, dp := range points {
		total += dp.Count
	}
	if total != 2 {
		t.Fatalf("expected 2 auth duration samples, got %d across %d series", total, len(points))
	}
}
