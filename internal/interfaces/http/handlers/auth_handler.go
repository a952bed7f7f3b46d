package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyberrisk/internal/application/dto"
	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// AuthHandler handles sign-in, sign-up and the public health probe.
type AuthHandler struct {
	backend *mockapi.Backend
	log     logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(backend *mockapi.Backend, log logger.Logger) *AuthHandler {
	return &AuthHandler{backend: backend, log: log}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var in mockapi.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": mockapi.ErrInvalidCredentials.Message})
		return
	}

	token, user, err := h.backend.Login(c.Request.Context(), in)
	if err != nil {
		sendError(c, h.log, "Login failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, UserProfile: user.Profile()})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var in mockapi.RegisterInput
	if !bindJSON(c, &in, "Registration failed") {
		return
	}

	token, user, err := h.backend.Register(c.Request.Context(), in)
	if err != nil {
		sendError(c, h.log, "Registration failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, UserProfile: user.Profile()})
}

// Health handles GET /auth/health.
func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.backend.AuthHealth())
}

//Personal.AI order the ending
