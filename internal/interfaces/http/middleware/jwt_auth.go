package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// userKey holds the authenticated *mockapi.User in the gin context.
const userKey = "mockapi.user"

// Authenticator resolves a bearer token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*mockapi.User, error)
}

// extractBearer extracts the token from the Authorization header.
func extractBearer(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], constants.BearerScheme) {
		return ""
	}
	return parts[1]
}

// RequireJWT rejects requests without a valid bearer token with 401.
func RequireJWT(auth Authenticator, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractBearer(c.GetHeader(constants.HeaderAuthorization))
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": mockapi.ErrUnauthorized.Message})
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), tokenStr)
		if err != nil {
			log.Warn(c.Request.Context(), "bearer token rejected", logger.String("path", c.FullPath()), logger.Err(err))
			status := http.StatusUnauthorized
			var apiErr *mockapi.APIError
			if errors.As(err, &apiErr) {
				status = apiErr.Status
			}
			c.AbortWithStatusJSON(status, gin.H{"error": mockapi.ErrUnauthorized.Message})
			return
		}

		c.Set(userKey, user)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), constants.ContextKeyUsername, user.Username))
		c.Next()
	}
}

// RequireAdmin rejects authenticated non-admins with 403. It must run after
// RequireJWT.
func RequireAdmin(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": mockapi.ErrUnauthorized.Message})
			return
		}
		if user.Role != models.RoleAdmin {
			log.Warn(c.Request.Context(), "admin route refused", logger.String("username", user.Username))
			c.AbortWithStatusJSON(mockapi.ErrAdminRequired.Status, gin.H{"error": mockapi.ErrAdminRequired.Message})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account RequireJWT attached, or nil.
func CurrentUser(c *gin.Context) *mockapi.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*mockapi.User)
	return u
}
