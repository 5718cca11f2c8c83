package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quality-service/internal/models"
	"quality-service/internal/services"
)

const authContextKey = "auth_context"

// AuthMiddleware resolves the session for each request
type AuthMiddleware struct {
	auth       *services.AuthService
	cookieName string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(auth *services.AuthService, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, cookieName: cookieName}
}

// SessionRequired rejects requests without a live session
func (m *AuthMiddleware) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		auth, err := m.auth.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(authContextKey, *auth)
		c.Set("user_id", auth.UserID.String())
		c.Set("user_role", auth.Role)
		c.Next()
	}
}

// RequireRole rejects sessions whose role is not in the allowed set.
// Must run after SessionRequired.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, ok := GetAuthContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !auth.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// GetAuthContext retrieves the resolved session from the Gin context
func GetAuthContext(c *gin.Context) (models.AuthContext, bool) {
	value, exists := c.Get(authContextKey)
	if !exists {
		return models.AuthContext{}, false
	}
	auth, ok := value.(models.AuthContext)
	return auth, ok
}

// SetAuthContext stores a session in the Gin context. Exposed for handler tests.
func SetAuthContext(c *gin.Context, auth models.AuthContext) {
	c.Set(authContextKey, auth)
}

func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
