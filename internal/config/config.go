package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultDatabasePath is the default path for the application database.
const DefaultDatabasePath = "./shelfmark.db"

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Auth
		Loans
		Reviews
		Metadata
		Tasks
		Demo
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	UI struct {
		TemplatesPath string
		StaticPath    string
	}

	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Login rate limiting
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}

	Loans struct {
		PeriodDays    int    // Loan period before a book is due (default: 14)
		OverdueSweep  bool   // Run the nightly sweep that persists overdue status
		SweepSchedule string // Cron format: "0 2 * * *" = 02:00 daily
	}

	Reviews struct {
		RequireLoan bool // Only users who borrowed a book may review it
	}

	Metadata struct {
		EnrichmentEnabled bool   // Expose the Open Library enrichment endpoints
		CoversDir         string // Local cache directory for cover images
	}

	Tasks struct {
		Enabled         bool // Run the background task queue
		Workers         int
		ReleaseAfter    time.Duration // When stuck tasks go back to the queue
		CleanupInterval time.Duration
	}

	Demo struct {
		Enabled bool // Read-only demo mode for public instances
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "168h") // 7 days
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Circulation defaults
	v.SetDefault("loan_period_days", 14)
	v.SetDefault("loan_overdue_sweep", true)
	v.SetDefault("loan_sweep_schedule", "0 2 * * *")
	v.SetDefault("reviews_require_loan", true)

	// Metadata enrichment and demo mode
	v.SetDefault("metadata_enrichment_enabled", true)
	v.SetDefault("covers_dir", "./covers")
	v.SetDefault("demo_mode", false)

	// Background task queue
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Auth: Auth{
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Loans: Loans{
			PeriodDays:    v.GetInt("LOAN_PERIOD_DAYS"),
			OverdueSweep:  v.GetBool("LOAN_OVERDUE_SWEEP"),
			SweepSchedule: v.GetString("LOAN_SWEEP_SCHEDULE"),
		},
		Reviews: Reviews{
			RequireLoan: v.GetBool("REVIEWS_REQUIRE_LOAN"),
		},
		Metadata: Metadata{
			EnrichmentEnabled: v.GetBool("METADATA_ENRICHMENT_ENABLED"),
			CoversDir:         v.GetString("COVERS_DIR"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
	}
}
