package http

import (
	"context"
	"time"

	"github.com/shelfmark/shelfmark/internal/database/books"
	"github.com/shelfmark/shelfmark/internal/entities"
	"github.com/shelfmark/shelfmark/internal/metadata"
)

// This file consolidates the store interface definitions used by HTTP
// controllers. Each controller depends only on the methods it actually
// uses; the gorm repositories under internal/database satisfy them.

// Auditor records auth and admin actions. Implementations must never
// fail the request the event describes.
type Auditor interface {
	Record(userID string, eventType entities.AuditEventType, action, entityID, ip string)
}

// BookStore provides catalog access for the books and pages controllers.
type BookStore interface {
	Create(book *entities.Book) error
	GetByID(id string) (*entities.Book, error)
	List(filter books.Filter) ([]entities.Book, error)
	Update(id string, updates map[string]any) error
	Delete(id string) error
	Languages() ([]string, error)
}

// AuthorStore resolves author names submitted by admin book forms.
type AuthorStore interface {
	GetOrCreate(name, bio string) (*entities.Author, error)
	List() ([]entities.Author, error)
}

// GenreStore resolves genre names submitted by admin book forms.
type GenreStore interface {
	GetOrCreate(name string) (*entities.Genre, error)
	List() ([]entities.Genre, error)
}

// LoanStore provides circulation operations.
type LoanStore interface {
	Borrow(userID, bookID string, periodDays int) (*entities.Loan, error)
	Return(loanID string) (*entities.Loan, error)
	GetByID(id string) (*entities.Loan, error)
	ListByUser(userID string, activeOnly bool) ([]entities.Loan, error)
	HasUserBorrowed(userID, bookID string) (bool, error)
	MarkOverdue(now time.Time) (int64, error)
}

// WishlistStore provides wishlist operations.
type WishlistStore interface {
	Add(userID, bookID string) (*entities.WishlistEntry, error)
	ListByUser(userID string) ([]entities.WishlistEntry, error)
	Contains(userID, bookID string) (bool, error)
	CountForUser(userID string) (int64, error)
	Remove(userID, bookID string) error
}

// ReviewStore provides review operations.
type ReviewStore interface {
	Upsert(userID, bookID string, rating int, text string) (*entities.Review, error)
	ListByBook(bookID string) ([]entities.Review, error)
	AverageForBook(bookID string) (*float64, error)
}

// RequestStore provides book-request operations.
type RequestStore interface {
	Create(request *entities.Request) error
	GetByID(id string) (*entities.Request, error)
	ListByUser(userID string) ([]entities.Request, error)
	ListAll() ([]entities.Request, error)
	UpdateStatus(id string, status entities.RequestStatus) error
	Delete(id string) error
}

// Enricher fills missing catalog fields from an external metadata
// source.
type Enricher interface {
	EnrichBook(ctx context.Context, bookID string) (*metadata.EnrichmentResult, error)
	EnrichAllMissing(ctx context.Context) (*metadata.BulkEnrichmentResult, error)
}

// CoverCache fetches and locally caches book cover images.
type CoverCache interface {
	GetCover(bookID, coverURL string) (string, error)
}

// TaskQueue submits background jobs for later execution by the worker
// pool.
type TaskQueue interface {
	SubmitEnrichBook(bookID string) (string, error)
	SubmitEnrichAll() (string, error)
}

// AuditLogStore reads back recorded audit events for the admin trail.
type AuditLogStore interface {
	ListRecent(limit int) ([]entities.AuditEvent, error)
}

// UserStore provides account access for the admin users controller.
type UserStore interface {
	GetByID(id string) (*entities.User, error)
	List() ([]entities.User, error)
	Count() (int64, error)
	Update(id string, updates map[string]any) error
	Delete(id string) error
}
