package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/entities"
)

// Context keys for the authenticated user
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyEmail  = "auth_email"
	ContextKeyRole   = "auth_role"
)

// Middleware resolves the session into a request-scoped auth context
// and provides the two route guards. Handlers read the context via
// GetUserID and friends instead of touching session state directly.
type Middleware struct {
	sessionManager *SessionManager
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(sessionManager *SessionManager) *Middleware {
	return &Middleware{sessionManager: sessionManager}
}

// Handler copies session identity into the gin context on every
// request. It never rejects; the guards below do that per route.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := m.sessionManager.GetUserID(c.Request); userID != "" {
			c.Set(ContextKeyUserID, userID)
			c.Set(ContextKeyEmail, m.sessionManager.GetEmail(c.Request))
			c.Set(ContextKeyRole, m.sessionManager.GetUserRole(c.Request))
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid, unexpired session.
// API requests get a 401 JSON body; page requests redirect to /login.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			if isAPIRequest(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"message": "authentication required",
				})
				return
			}
			c.Redirect(http.StatusFound, "/login?next="+c.Request.URL.Path)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects unauthenticated requests like RequireAuth and
// additionally rejects non-admin roles: 403 for the API, a redirect to
// the dashboard for pages.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	requireAuth := m.RequireAuth()
	return func(c *gin.Context) {
		requireAuth(c)
		if c.IsAborted() {
			return
		}
		if GetUserRole(c) != entities.UserRoleAdmin {
			if isAPIRequest(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"message": "admin access required",
				})
				return
			}
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
		}
	}
}

func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// GetUserID retrieves the authenticated user's id, "" if anonymous.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(string); ok {
			return userID
		}
	}
	return ""
}

// GetEmail retrieves the authenticated user's email.
func GetEmail(c *gin.Context) string {
	if e, exists := c.Get(ContextKeyEmail); exists {
		if email, ok := e.(string); ok {
			return email
		}
	}
	return ""
}

// GetUserRole retrieves the authenticated user's role, "" if anonymous.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

// IsAuthenticated reports whether the request carries a signed-in user.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != ""
}

// IsAdmin reports whether the signed-in user is an admin.
func IsAdmin(c *gin.Context) bool {
	return GetUserRole(c) == entities.UserRoleAdmin
}
