package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so the session context survives
	// CSRF's request replacement
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	router.Use(cfg.AuthMiddleware.Handler())

	// Demo mode blocks writes after the session is loaded so the page
	// templates still know who is signed in
	if cfg.DemoMiddleware != nil {
		router.Use(cfg.DemoMiddleware.InjectContext())
		router.Use(cfg.DemoMiddleware.Handler())
	}

	requireAuth := cfg.AuthMiddleware.RequireAuth()
	requireAdmin := cfg.AuthMiddleware.RequireAdmin()

	// Load HTML templates and static assets
	if cfg.TemplatesPath != "" {
		tmpl := template.Must(template.New("").Funcs(template.FuncMap{
			"subtract": func(a, b int) int {
				return a - b
			},
		}).ParseGlob(cfg.TemplatesPath + "/*.html"))
		router.SetHTMLTemplate(tmpl)
	}
	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	// Controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.RateLimiter, cfg.Auditor)
	booksController := NewBooksController(cfg.BookStore, cfg.AuthorStore, cfg.GenreStore, cfg.ReviewStore, cfg.Auditor, cfg.TaskQueue)
	loansController := NewLoansController(cfg.LoanStore, cfg.Auditor, cfg.LoanPeriodDays)
	wishlistController := NewWishlistController(cfg.WishlistStore, cfg.BookStore)
	reviewsController := NewReviewsController(cfg.ReviewStore, cfg.BookStore, cfg.LoanStore, cfg.ReviewsRequireLoan)
	requestsController := NewRequestsController(cfg.RequestStore, cfg.BookStore, cfg.Auditor)
	usersController := NewUsersController(cfg.UserStore, cfg.AuthService, cfg.Auditor)
	pagesController := NewPagesController(cfg.BookStore, cfg.GenreStore, cfg.LoanStore, cfg.WishlistStore, cfg.ReviewStore, cfg.RequestStore, cfg.UserStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Authentication
	router.POST("/api/login", authController.Login)
	router.POST("/api/signup", authController.Signup)
	router.POST("/api/logout", requireAuth, authController.Logout)
	router.GET("/api/me", requireAuth, authController.Me)
	router.POST("/api/me/password", requireAuth, authController.ChangePassword)

	// Catalog
	router.GET("/api/books", requireAuth, booksController.ListBooks)
	router.GET("/api/books/:id", requireAuth, booksController.GetBook)
	router.POST("/api/books", requireAdmin, booksController.CreateBook)
	router.PUT("/api/books/:id", requireAdmin, booksController.UpdateBook)
	router.DELETE("/api/books/:id", requireAdmin, booksController.DeleteBook)
	router.GET("/api/genres", requireAuth, booksController.ListGenres)
	router.GET("/api/languages", requireAuth, booksController.ListLanguages)

	// Catalog enrichment and covers, registered only when configured
	if cfg.Enricher != nil {
		metadataController := NewMetadataController(cfg.Enricher, cfg.TaskQueue, cfg.Auditor)
		router.POST("/api/books/:id/enrich", requireAdmin, metadataController.EnrichBook)
		router.POST("/api/metadata/enrich-missing", requireAdmin, metadataController.EnrichMissing)
	}
	if cfg.CoverCache != nil {
		coversController := NewCoversController(cfg.BookStore, cfg.CoverCache)
		router.GET("/covers/:id", requireAuth, coversController.GetCover)
	}

	// Circulation
	router.GET("/api/loans", requireAuth, loansController.ListLoans)
	router.GET("/api/loans/active", requireAuth, loansController.ListActiveLoans)
	router.POST("/api/loans", requireAuth, loansController.Borrow)
	router.POST("/api/loans/:id/return", requireAuth, loansController.Return)

	// Wishlist
	router.GET("/api/wishlist", requireAuth, wishlistController.ListWishlist)
	router.POST("/api/wishlist", requireAuth, wishlistController.AddToWishlist)
	router.DELETE("/api/wishlist/:bookId", requireAuth, wishlistController.RemoveFromWishlist)

	// Reviews
	router.GET("/api/books/:id/reviews", requireAuth, reviewsController.ListReviews)
	router.POST("/api/books/:id/reviews", requireAuth, reviewsController.CreateReview)

	// Book requests
	router.GET("/api/requests", requireAuth, requestsController.ListRequests)
	router.POST("/api/requests", requireAuth, requestsController.CreateRequest)
	router.PATCH("/api/requests/:id", requireAdmin, requestsController.UpdateRequestStatus)
	router.DELETE("/api/requests/:id", requireAuth, requestsController.DeleteRequest)

	// Admin audit trail
	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog)
		router.GET("/api/audit", requireAdmin, auditController.ListEvents)
	}

	// Account administration
	router.GET("/api/users", requireAdmin, usersController.ListUsers)
	router.POST("/api/users", requireAdmin, usersController.CreateUser)
	router.PUT("/api/users/:id", requireAdmin, usersController.UpdateUser)
	router.DELETE("/api/users/:id", requireAdmin, usersController.DeleteUser)

	// Pages
	router.GET("/", func(c *gin.Context) {
		c.Redirect(302, "/dashboard")
	})
	router.GET("/login", pagesController.LoginPage)
	router.GET("/signup", pagesController.SignupPage)
	router.GET("/dashboard", requireAuth, pagesController.DashboardPage)
	router.GET("/books", requireAuth, pagesController.BooksPage)
	router.GET("/books/:id", requireAuth, pagesController.BookPage)
	router.GET("/my-loans", requireAuth, pagesController.MyLoansPage)
	router.GET("/wishlist", requireAuth, pagesController.WishlistPage)
	router.GET("/requests", requireAuth, pagesController.RequestsPage)
	router.GET("/admin/books", requireAdmin, pagesController.AdminBooksPage)
	router.GET("/admin/users", requireAdmin, pagesController.AdminUsersPage)
	router.GET("/admin/requests", requireAdmin, pagesController.AdminRequestsPage)

	return router
}
