// Package demo provides the read-only demo mode for public instances.
package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyDemoMode exposes the demo flag to page templates.
const ContextKeyDemoMode = "demo_mode"

// Middleware blocks write operations when demo mode is active. Reads
// always pass; the auth endpoints are allowlisted so visitors can still
// sign in with the seeded demo accounts.
type Middleware struct {
	enabled bool
}

// NewMiddleware creates a demo mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

// isAllowedPath allowlists the handful of writes a demo visitor needs.
func (m *Middleware) isAllowedPath(path string) bool {
	allowedPaths := []string{
		"/api/login",
		"/api/logout",
	}

	for _, allowed := range allowedPaths {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}
	return false
}

// respondBlocked sends a 403 with the standard message envelope for API
// calls and a plain string for everything else.
func (m *Middleware) respondBlocked(c *gin.Context) {
	message := "This action is disabled in demo mode"

	accept := c.GetHeader("Accept")
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.Contains(accept, "application/json") {
		c.JSON(http.StatusForbidden, gin.H{
			"message":   message,
			"demo_mode": true,
		})
		c.Abort()
		return
	}

	c.String(http.StatusForbidden, message)
	c.Abort()
}

// InjectContext adds the demo mode flag to the request context so page
// templates can render a banner.
func (m *Middleware) InjectContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)
		c.Next()
	}
}
