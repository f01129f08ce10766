package auth

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// Session data keys
const (
	SessionKeyUserID = "user_id"
	SessionKeyEmail  = "email"
	SessionKeyRole   = "role"
)

// SessionManager wraps scs.SessionManager with application-specific
// methods. Sessions are stored in the application's SQLite database and
// expire after the configured lifetime; there is no active sweep,
// expired sessions simply fail to load.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager backed by the
// given SQL database (the one underlying gorm).
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.SessionLifetime

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession establishes a session for a user after successful
// authentication. The token is renewed first to prevent fixation.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	sm.Put(r.Context(), SessionKeyUserID, user.ID)
	sm.Put(r.Context(), SessionKeyEmail, user.Email)
	sm.Put(r.Context(), SessionKeyRole, string(user.Role))

	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetUserID retrieves the user id from the session, "" if absent.
func (sm *SessionManager) GetUserID(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUserID)
}

// GetEmail retrieves the email from the session.
func (sm *SessionManager) GetEmail(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyEmail)
}

// GetUserRole retrieves the role from the session. The stored value is
// re-validated against the role enum on every read.
func (sm *SessionManager) GetUserRole(r *http.Request) entities.UserRole {
	role := entities.UserRole(sm.GetString(r.Context(), SessionKeyRole))
	if !entities.ValidRole(role) {
		return ""
	}
	return role
}

// IsAuthenticated reports whether the request carries a valid session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetUserID(r) != ""
}
