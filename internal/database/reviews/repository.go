// Package reviews provides database operations for book reviews.
package reviews

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// Repository handles all review database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reviews repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert stores a user's review of a book. A second review of the same
// book by the same user updates the first in place.
func (r *Repository) Upsert(userID, bookID string, rating int, text string) (*entities.Review, error) {
	var existing entities.Review
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&existing).Error
	if err == nil {
		updates := map[string]any{"rating": rating, "text": text}
		if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		existing.Rating = rating
		existing.Text = text
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &entities.Review{
		UserID: userID,
		BookID: bookID,
		Rating: rating,
		Text:   text,
	}
	if err := r.db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// ListByBook returns all reviews for a book, newest first.
func (r *Repository) ListByBook(bookID string) ([]entities.Review, error) {
	var reviews []entities.Review
	err := r.db.Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// ListByUser returns all reviews written by a user.
func (r *Repository) ListByUser(userID string) ([]entities.Review, error) {
	var reviews []entities.Review
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// AverageForBook returns the mean rating, or nil when the book has no
// reviews. Zero reviews is "no rating", never a rating of zero.
func (r *Repository) AverageForBook(bookID string) (*float64, error) {
	var count int64
	if err := r.db.Model(&entities.Review{}).Where("book_id = ?", bookID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	var avg float64
	err := r.db.Model(&entities.Review{}).
		Where("book_id = ?", bookID).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	return &avg, nil
}

// Delete removes a review.
func (r *Repository) Delete(id string) error {
	result := r.db.Delete(&entities.Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
