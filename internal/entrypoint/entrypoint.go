package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/covers"
	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/database/audit"
	"github.com/shelfmark/shelfmark/internal/database/authors"
	"github.com/shelfmark/shelfmark/internal/database/books"
	"github.com/shelfmark/shelfmark/internal/database/genres"
	"github.com/shelfmark/shelfmark/internal/database/loans"
	"github.com/shelfmark/shelfmark/internal/database/requests"
	"github.com/shelfmark/shelfmark/internal/database/reviews"
	"github.com/shelfmark/shelfmark/internal/database/users"
	"github.com/shelfmark/shelfmark/internal/database/wishlist"
	"github.com/shelfmark/shelfmark/internal/demo"
	http_controllers "github.com/shelfmark/shelfmark/internal/http"
	"github.com/shelfmark/shelfmark/internal/metadata"
	"github.com/shelfmark/shelfmark/internal/scheduler"
	"github.com/shelfmark/shelfmark/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains it
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the repositories, auth stack and router together and
// serves until shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Shelfmark v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	userRepo := users.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	authorRepo := authors.NewRepository(db.DB)
	genreRepo := genres.NewRepository(db.DB)
	loanRepo := loans.NewRepository(db.DB)
	wishlistRepo := wishlist.NewRepository(db.DB)
	reviewRepo := reviews.NewRepository(db.DB)
	requestRepo := requests.NewRepository(db.DB)
	auditRepo := audit.NewRepository(db.DB)

	// Authentication stack
	authService := auth.NewService(userRepo, cfg.Auth)

	sqlDB, err := db.SQLDB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}
	authMiddleware := auth.NewMiddleware(sessionManager)

	rateLimiter := auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		WindowDuration:  cfg.Auth.RateLimitWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	})
	defer rateLimiter.Stop()

	csrfSecret := resolveCSRFSecret(cfg.Auth.SessionSecret)

	// Nightly sweep persisting the derived overdue status
	var sweeper *scheduler.OverdueSweeper
	if cfg.Loans.OverdueSweep {
		sweeper = scheduler.NewOverdueSweeper(loanRepo, cfg.Loans.SweepSchedule)
		if err := sweeper.Start(); err != nil {
			log.Fatalf("Failed to schedule overdue sweep: %v", err)
		}
	}

	// Cover cache and Open Library enrichment
	coverCache, err := covers.NewCache(cfg.Metadata.CoversDir)
	if err != nil {
		log.Fatalf("Failed to initialize cover cache: %v", err)
	}

	var enricher http_controllers.Enricher
	var metadataEnricher *metadata.Enricher
	if cfg.Metadata.EnrichmentEnabled {
		metadataEnricher = metadata.NewEnricher(metadata.NewOpenLibraryClient(), bookRepo)
		metadataEnricher.SetCoverInvalidator(coverCache)
		enricher = metadataEnricher
	}

	// Background task queue for long-running enrichment jobs
	var taskClient *tasks.Client
	var taskQueue http_controllers.TaskQueue
	var taskCancel context.CancelFunc
	if cfg.Tasks.Enabled && metadataEnricher != nil {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewEnrichBookQueue(metadataEnricher),
			tasks.NewEnrichCatalogQueue(metadataEnricher),
		)

		var taskCtx context.Context
		taskCtx, taskCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
		taskQueue = taskClient
	}

	var demoMiddleware *demo.Middleware
	if cfg.Demo.Enabled {
		demoMiddleware = demo.NewMiddleware(true)
		log.Printf("Demo mode enabled: write operations are blocked")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:           db,
		Auditor:            auditRepo,
		BookStore:          bookRepo,
		AuthorStore:        authorRepo,
		GenreStore:         genreRepo,
		LoanStore:          loanRepo,
		WishlistStore:      wishlistRepo,
		ReviewStore:        reviewRepo,
		RequestStore:       requestRepo,
		UserStore:          userRepo,
		AuthService:        authService,
		SessionManager:     sessionManager,
		AuthMiddleware:     authMiddleware,
		RateLimiter:        rateLimiter,
		CSRFSecret:         csrfSecret,
		SecureCookies:      cfg.Auth.SecureCookies,
		Enricher:           enricher,
		CoverCache:         coverCache,
		TaskQueue:          taskQueue,
		AuditLog:           auditRepo,
		DemoMiddleware:     demoMiddleware,
		LoanPeriodDays:     cfg.Loans.PeriodDays,
		ReviewsRequireLoan: cfg.Reviews.RequireLoan,
		TemplatesPath:      cfg.UI.TemplatesPath,
		StaticPath:         cfg.UI.StaticPath,
		Version:            version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if sweeper != nil {
			sweeper.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
			taskCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// resolveCSRFSecret decodes the configured secret, falling back to a
// generated one when unset.
func resolveCSRFSecret(configured string) []byte {
	if configured != "" {
		secret, err := hex.DecodeString(configured)
		if err != nil {
			// Not hex, use as raw bytes
			return []byte(configured)
		}
		return secret
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}
	secret, _ := hex.DecodeString(generated)
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return secret
}

// InitDB creates the schema and seeds the reference data and demo
// accounts. Safe to run repeatedly.
func InitDB(cfg *config.Config) error {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Seed(func(password string) (string, error) {
		return auth.HashPassword(password, cfg.Auth.BcryptCost)
	})
}
