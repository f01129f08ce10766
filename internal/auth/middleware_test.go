package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setIdentity simulates the session-loading middleware by injecting an
// authenticated user into the gin context.
func setIdentity(userID string, role entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(ContextKeyUserID, userID)
			c.Set(ContextKeyEmail, "user@example.com")
			c.Set(ContextKeyRole, role)
		}
		c.Next()
	}
}

func performRequest(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	m := NewMiddleware(nil)

	tests := []struct {
		name         string
		userID       string
		path         string
		headers      map[string]string
		wantStatus   int
		wantLocation string
	}{
		{
			name:       "authenticated API request passes",
			userID:     "user-1",
			path:       "/api/loans",
			wantStatus: http.StatusOK,
		},
		{
			name:       "anonymous API request gets 401",
			userID:     "",
			path:       "/api/loans",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "anonymous JSON request gets 401",
			userID:     "",
			path:       "/dashboard",
			headers:    map[string]string{"Accept": "application/json"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:         "anonymous page request redirects to login",
			userID:       "",
			path:         "/dashboard",
			wantStatus:   http.StatusFound,
			wantLocation: "/login?next=/dashboard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(setIdentity(tt.userID, entities.UserRoleStudent))
			r.GET(strings.SplitN(tt.path, "?", 2)[0], m.RequireAuth(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := performRequest(r, tt.path, tt.headers)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && w.Header().Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q, want %q", w.Header().Get("Location"), tt.wantLocation)
			}
			if tt.wantStatus == http.StatusUnauthorized && !strings.Contains(w.Body.String(), "message") {
				t.Errorf("401 body missing message field: %s", w.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewMiddleware(nil)

	tests := []struct {
		name         string
		userID       string
		role         entities.UserRole
		path         string
		wantStatus   int
		wantLocation string
	}{
		{
			name:       "admin API request passes",
			userID:     "admin-1",
			role:       entities.UserRoleAdmin,
			path:       "/api/users",
			wantStatus: http.StatusOK,
		},
		{
			name:       "student API request gets 403",
			userID:     "student-1",
			role:       entities.UserRoleStudent,
			path:       "/api/users",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "anonymous API request gets 401",
			userID:     "",
			path:       "/api/users",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:         "student page request redirects to dashboard",
			userID:       "student-1",
			role:         entities.UserRoleStudent,
			path:         "/admin/books",
			wantStatus:   http.StatusFound,
			wantLocation: "/dashboard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(setIdentity(tt.userID, tt.role))
			r.GET(tt.path, m.RequireAdmin(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := performRequest(r, tt.path, nil)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && w.Header().Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q, want %q", w.Header().Get("Location"), tt.wantLocation)
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetUserID(c) != "" || IsAuthenticated(c) || IsAdmin(c) {
		t.Error("empty context should be anonymous")
	}

	c.Set(ContextKeyUserID, "user-1")
	c.Set(ContextKeyEmail, "user@example.com")
	c.Set(ContextKeyRole, entities.UserRoleAdmin)

	if GetUserID(c) != "user-1" {
		t.Errorf("GetUserID() = %q, want user-1", GetUserID(c))
	}
	if GetEmail(c) != "user@example.com" {
		t.Errorf("GetEmail() = %q", GetEmail(c))
	}
	if !IsAdmin(c) {
		t.Error("IsAdmin() = false for admin role")
	}
}
