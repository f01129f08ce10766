// Package loans implements the circulation operations: borrowing,
// returning and listing loans.
//
// Borrow and return each run as a single transaction so the loan record
// and the book's copy count always move together. The decrement is
// guarded (available_copies > 0 in the WHERE clause) rather than blind,
// which is what keeps two concurrent borrows of the last copy from both
// succeeding.
package loans

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// Repository handles all loan database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Borrow creates a loan for one copy of a book, decrementing the
// available count in the same transaction. Returns
// database.ErrBookUnavailable when no copies remain and
// database.ErrNotFound when the book does not exist.
func (r *Repository) Borrow(userID, bookID string, periodDays int) (*entities.Loan, error) {
	var loan *entities.Loan

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, "id = ?", bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return database.ErrNotFound
			}
			return err
		}

		// Guarded decrement: zero rows affected means another request
		// took the last copy between the read above and this write.
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND available_copies > 0", bookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrBookUnavailable
		}

		now := time.Now().UTC()
		loan = &entities.Loan{
			UserID:     userID,
			BookID:     bookID,
			BorrowedAt: now,
			DueAt:      now.AddDate(0, 0, periodDays),
			Status:     entities.LoanStatusActive,
		}
		return tx.Create(loan).Error
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return marks a loan returned and releases its copy back to the book.
// A second return of the same loan fails with
// database.ErrLoanAlreadyReturned; the increment is capped at
// total_copies so a stray return can never inflate availability.
func (r *Repository) Return(loanID string) (*entities.Loan, error) {
	var returned *entities.Loan

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var loan entities.Loan
		if err := tx.First(&loan, "id = ?", loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return database.ErrNotFound
			}
			return err
		}

		if loan.ReturnedAt != nil {
			return database.ErrLoanAlreadyReturned
		}

		now := time.Now().UTC()
		result := tx.Model(&entities.Loan{}).
			Where("id = ? AND returned_at IS NULL", loanID).
			Updates(map[string]any{
				"returned_at": now,
				"status":      entities.LoanStatusReturned,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrLoanAlreadyReturned
		}

		if err := tx.Model(&entities.Book{}).
			Where("id = ? AND available_copies < total_copies", loan.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies + 1")).Error; err != nil {
			return err
		}

		loan.ReturnedAt = &now
		loan.Status = entities.LoanStatusReturned
		returned = &loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}

// GetByID retrieves a loan with its book preloaded.
func (r *Repository) GetByID(id string) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.Preload("Book").Preload("Book.Author").First(&loan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListByUser returns a user's loans, newest first, with books preloaded.
// With activeOnly set, returned loans are excluded.
func (r *Repository) ListByUser(userID string, activeOnly bool) ([]entities.Loan, error) {
	query := r.db.Preload("Book").Preload("Book.Author").
		Where("user_id = ?", userID).
		Order("borrowed_at DESC")
	if activeOnly {
		query = query.Where("returned_at IS NULL")
	}

	var loans []entities.Loan
	if err := query.Find(&loans).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range loans {
		loans[i].Status = loans[i].EffectiveStatus(now)
	}
	return loans, nil
}

// HasUserBorrowed reports whether the user has any loan, active or past,
// for the given book. Used by the review policy.
func (r *Repository) HasUserBorrowed(userID, bookID string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// MarkOverdue persists the overdue status on unreturned loans past
// their due date. Purely cosmetic for listings; EffectiveStatus derives
// the same answer without it.
func (r *Repository) MarkOverdue(now time.Time) (int64, error) {
	result := r.db.Model(&entities.Loan{}).
		Where("returned_at IS NULL AND due_at < ? AND status = ?", now, entities.LoanStatusActive).
		Update("status", entities.LoanStatusOverdue)
	return result.RowsAffected, result.Error
}
