package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

func TestObservabilityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	metrics, err := NewServerMetrics(reg)
	require.NoError(t, err)

	router := gin.New()
	router.Use(RequestLogger(logger.NewNoopLogger()), ObservabilityMiddleware(otel.Tracer("test-tracer"), metrics))
	router.GET("/scan/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/scan/1", "/scan/2", "/missing"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("GET", "/scan/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("GET", "not_found", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.RequestDuration))
}

func TestRequestLogger_EchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(logger.NewNoopLogger()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.HeaderRequestID, "req-42")
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(constants.HeaderRequestID))
}

func TestNewServerMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewServerMetrics(reg)
	require.NoError(t, err)
	_, err = NewServerMetrics(reg)
	assert.Error(t, err)
}
