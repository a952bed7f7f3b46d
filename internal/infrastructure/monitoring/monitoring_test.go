package monitoring

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

func TestEndpointLabel(t *testing.T) {
	cases := map[string]string{
		"/auth/login":             "/auth/login",
		"/scan/perform":           "/scan/perform",
		"/scan/history":           "/scan/history",
		"/scan/42":                "/scan/:id",
		"/scan/abc-def":           "/scan/:id",
		"/report/my-reports":      "/report/my-reports",
		"/report/comprehensive":   "/report/comprehensive",
		"/report/17":              "/report/:user_id",
		"/admin/users/role/ADMIN": "/admin/users/role/:role",
		"/admin/stats?x=1":        "/admin/stats",
	}
	for in, want := range cases {
		assert.Equal(t, want, EndpointLabel(in), in)
	}
}

func TestClientMetrics_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewClientMetrics("test", reg)
	require.NoError(t, err)

	m.ObserveRequest(http.MethodGet, "/scan/7", 200, 15*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/scan/8", 200, 5*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/auth/login", 0, time.Millisecond)
	m.IncSessionExpired()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/scan/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("POST", "/auth/login", "network_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionExpiration))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestClientMetrics_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewClientMetrics("dup", reg)
	require.NoError(t, err)
	_, err = NewClientMetrics("dup", reg)
	assert.Error(t, err)
}

func TestClientMetrics_NilIsSafe(t *testing.T) {
	var m *ClientMetrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/x", 200, time.Second)
		m.IncSessionExpired()
	})
}

func TestTracingManager_RecordsSpansAndInjectsHeaders(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tm := NewTracingManagerWithProvider(provider, logger.NewNoopLogger())

	ctx, span := tm.StartSpan(context.Background(), "GET /scan/:id")
	assert.NotEmpty(t, tm.TraceID(ctx))

	header := http.Header{}
	tm.InjectTraceContext(ctx, propagation.HeaderCarrier(header))
	assert.NotEmpty(t, header.Get("traceparent"))

	tm.RecordError(ctx, assert.AnError)
	span.End()
	require.NoError(t, tm.Shutdown(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /scan/:id", spans[0].Name)
	assert.Len(t, spans[0].Events, 1)
}

func TestNewTracingManager_Disabled(t *testing.T) {
	tm, err := NewTracingManager(config.TracingConfig{}, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.Empty(t, tm.TraceID(context.Background()))
	assert.NoError(t, tm.Shutdown(context.Background()))
}
