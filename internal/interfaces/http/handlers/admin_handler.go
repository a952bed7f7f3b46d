package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// AdminHandler serves /admin. Routes must sit behind RequireAdmin.
type AdminHandler struct {
	backend *mockapi.Backend
	log     logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(backend *mockapi.Backend, log logger.Logger) *AdminHandler {
	return &AdminHandler{backend: backend, log: log}
}

// Stats handles GET /admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	admin, ok := caller(c)
	if !ok {
		return
	}
	stats, err := h.backend.SystemStats(c.Request.Context(), admin)
	if err != nil {
		sendError(c, h.log, "Failed to retrieve system statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Users handles GET /admin/users.
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.backend.Users(c.Request.Context())
	if err != nil {
		sendError(c, h.log, "Failed to retrieve users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UsersByRole handles GET /admin/users/role/:role.
func (h *AdminHandler) UsersByRole(c *gin.Context) {
	users, err := h.backend.UsersByRole(c.Request.Context(), c.Param("role"))
	if err != nil {
		sendError(c, h.log, "Failed to retrieve users by role", err)
		return
	}
	c.JSON(http.StatusOK, users)
}
