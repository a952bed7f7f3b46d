package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// ScanHandler serves /scan.
type ScanHandler struct {
	backend *mockapi.Backend
	log     logger.Logger
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(backend *mockapi.Backend, log logger.Logger) *ScanHandler {
	return &ScanHandler{backend: backend, log: log}
}

// Perform handles POST /scan/perform.
func (h *ScanHandler) Perform(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	var in mockapi.ScanInput
	if !bindJSON(c, &in, "Scan failed") {
		return
	}

	scan, err := h.backend.PerformScan(c.Request.Context(), user, in)
	if err != nil {
		sendError(c, h.log, "Scan failed", err)
		return
	}
	c.JSON(http.StatusOK, scan.Record())
}

// Get handles GET /scan/:id.
func (h *ScanHandler) Get(c *gin.Context) {
	if _, ok := caller(c); !ok {
		return
	}
	scan, err := h.backend.GetScan(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, h.log, "Failed to retrieve scan result", err)
		return
	}
	c.JSON(http.StatusOK, scan.Record())
}

// History handles GET /scan/history.
func (h *ScanHandler) History(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	history, err := h.backend.History(c.Request.Context(), user)
	if err != nil {
		sendError(c, h.log, "Failed to retrieve scan history", err)
		return
	}
	c.JSON(http.StatusOK, history)
}
