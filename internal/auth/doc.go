// Package auth provides authentication and authorization.
//
// Authentication state is carried in a server-side session cookie,
// uniformly for pages and the JSON API. Sessions live in the same
// SQLite database as the rest of the data and expire after the
// configured lifetime (7 days by default); validation is lazy, there is
// no expiry sweep.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=168h          # Session duration (7 days)
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// # Usage
//
//	svc := auth.NewService(users.NewRepository(db), cfg.Auth)
//	sm, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sm.SessionLoadSave(), auth.NewMiddleware(sm).Handler())
//
// Guards:
//
//	api.POST("/loans", mw.RequireAuth(), loansController.Borrow)
//	api.DELETE("/books/:id", mw.RequireAdmin(), booksController.Delete)
package auth
