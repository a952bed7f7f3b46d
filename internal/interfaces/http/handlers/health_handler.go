package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// probeTimeout bounds each dependency check.
const probeTimeout = 2 * time.Second

// HealthHandler provides the liveness/readiness probes and the admin health view.
type HealthHandler struct {
	backend *mockapi.Backend
	log     logger.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(backend *mockapi.Backend, log logger.Logger) *HealthHandler {
	return &HealthHandler{backend: backend, log: log}
}

// LivenessCheck godoc
// @Summary      Liveness Check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now().UTC()})
}

// ReadinessCheck godoc
// @Summary      Readiness Check
// @Description  Checks if the service is ready to accept traffic.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	status := "healthy"
	checks := h.performChecks(c.Request.Context())

	httpStatus := http.StatusOK
	for _, checkStatus := range checks {
		if checkStatus != "ok" {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

// SystemHealth handles GET /admin/health.
func (h *HealthHandler) SystemHealth(c *gin.Context) {
	health, err := h.backend.SystemHealth(c.Request.Context())
	if err != nil {
		sendError(c, h.log, "Health check failed", err)
		return
	}
	c.JSON(http.StatusOK, health)
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]string {
	var wg sync.WaitGroup
	checks := make(map[string]string)
	mu := &sync.Mutex{}

	checkers := map[string]func(context.Context) error{
		"database": h.backend.Ping,
	}

	wg.Add(len(checkers))
	for name, check := range checkers {
		go func(name string, check func(context.Context) error) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()

			status := "ok"
			if err := check(ctx); err != nil {
				status = "error: " + err.Error()
				h.log.Warn(ctx, "readiness check failed", logger.String("check", name), logger.Err(err))
			}
			mu.Lock()
			checks[name] = status
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return checks
}
