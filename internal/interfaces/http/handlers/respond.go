// Package handlers serves the CyberRisk API surface of the mock backend.
// Every failure is written as {"error": "<message>"}.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/internal/interfaces/http/middleware"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// sendError writes err with the status it carries. Unclassified errors are
// reported as 400 with fallback prefixed, the way the real service does.
func sendError(c *gin.Context, log logger.Logger, fallback string, err error) {
	var apiErr *mockapi.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= http.StatusInternalServerError {
			log.Error(c.Request.Context(), "request failed", err, logger.String("path", c.FullPath()))
		}
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Message})
		return
	}
	log.Warn(c.Request.Context(), "request failed", logger.String("path", c.FullPath()), logger.Err(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fallback + ": " + err.Error()})
}

// bindJSON decodes the body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, dst interface{}, prefix string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": prefix + ": " + err.Error()})
		return false
	}
	return true
}

// caller returns the authenticated user or aborts with 401.
func caller(c *gin.Context) (*mockapi.User, bool) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": mockapi.ErrUnauthorized.Message})
		return nil, false
	}
	return u, true
}
