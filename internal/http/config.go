package http

import (
	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/demo"
)

// RouterConfig contains all dependencies and configuration needed to
// create the HTTP router. This replaces a long parameter list in
// NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Auditor  Auditor

	// Stores
	BookStore     BookStore
	AuthorStore   AuthorStore
	GenreStore    GenreStore
	LoanStore     LoanStore
	WishlistStore WishlistStore
	ReviewStore   ReviewStore
	RequestStore  RequestStore
	UserStore     UserStore

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	RateLimiter    *auth.RateLimiter
	CSRFSecret     []byte
	SecureCookies  bool

	// Catalog enrichment, optional. Routes are only registered when
	// the enricher is present. Bulk enrichment needs the task queue.
	Enricher   Enricher
	CoverCache CoverCache
	TaskQueue  TaskQueue

	// Admin audit trail, optional
	AuditLog AuditLogStore

	// Demo mode, optional
	DemoMiddleware *demo.Middleware

	// Policy knobs
	LoanPeriodDays     int
	ReviewsRequireLoan bool

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
