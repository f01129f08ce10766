// Package wishlist provides database operations for wishlist entries.
package wishlist

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// Repository handles all wishlist database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new wishlist repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add puts a book on a user's wishlist. Adding an already-wishlisted
// book returns the existing entry; the unique (user_id, book_id) index
// backs this up when two adds race.
func (r *Repository) Add(userID, bookID string) (*entities.WishlistEntry, error) {
	entry := &entities.WishlistEntry{UserID: userID, BookID: bookID}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
	if err != nil {
		return nil, err
	}

	// With DoNothing the returned struct is not populated on conflict;
	// re-read so callers always get the stored entry.
	var stored entities.WishlistEntry
	err = r.db.Preload("Book").Preload("Book.Author").
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListByUser returns a user's wishlist, newest first, books preloaded.
func (r *Repository) ListByUser(userID string) ([]entities.WishlistEntry, error) {
	var entries []entities.WishlistEntry
	err := r.db.Preload("Book").Preload("Book.Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// Contains reports whether the book is on the user's wishlist.
func (r *Repository) Contains(userID, bookID string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.WishlistEntry{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// Remove deletes the entry for (user, book).
func (r *Repository) Remove(userID, bookID string) error {
	result := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.WishlistEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// CountForUser returns the number of entries on a user's wishlist.
func (r *Repository) CountForUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.WishlistEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return count, err
}
