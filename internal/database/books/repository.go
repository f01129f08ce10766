// Package books provides database operations for the catalog.
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Genre         string // genre name
	Language      string
	AvailableOnly bool
	Query         string // substring match on title or author name
}

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a book. AvailableCopies defaults to TotalCopies when
// left unset so a new book is immediately borrowable. Copy counts are
// clamped into 0 <= available <= total.
func (r *Repository) Create(book *entities.Book) error {
	if book.TotalCopies < 0 {
		book.TotalCopies = 0
	}
	if book.AvailableCopies == 0 && book.TotalCopies > 0 {
		book.AvailableCopies = book.TotalCopies
	}
	if book.AvailableCopies < 0 {
		book.AvailableCopies = 0
	}
	if book.AvailableCopies > book.TotalCopies {
		book.AvailableCopies = book.TotalCopies
	}
	return r.db.Create(book).Error
}

// GetByID retrieves a book with its author and genre.
func (r *Repository) GetByID(id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").Preload("Genre").First(&book, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List returns books matching the filter, author and genre preloaded.
func (r *Repository) List(filter Filter) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{}).
		Preload("Author").Preload("Genre").
		Joins("LEFT JOIN authors ON authors.id = books.author_id").
		Joins("LEFT JOIN genres ON genres.id = books.genre_id")

	if filter.Genre != "" {
		query = query.Where("genres.name = ?", filter.Genre)
	}
	if filter.Language != "" {
		query = query.Where("books.language = ?", filter.Language)
	}
	if filter.AvailableOnly {
		query = query.Where("books.available_copies > 0")
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("books.title LIKE ? OR authors.name LIKE ?", like, like)
	}

	var books []entities.Book
	err := query.Order("books.title ASC").Find(&books).Error
	return books, err
}

// Update applies a partial update. Copy counts are clamped so the
// available <= total invariant survives admin edits.
func (r *Repository) Update(id string, updates map[string]any) error {
	book, err := r.GetByID(id)
	if err != nil {
		return err
	}

	if total, ok := intField(updates, "total_copies"); ok {
		if total < 0 {
			total = 0
			updates["total_copies"] = 0
		}
		borrowed := book.TotalCopies - book.AvailableCopies
		available := total - borrowed
		if available < 0 {
			available = 0
		}
		if _, explicit := updates["available_copies"]; !explicit {
			updates["available_copies"] = available
		}
	}
	if available, ok := intField(updates, "available_copies"); ok {
		total := book.TotalCopies
		if t, ok := intField(updates, "total_copies"); ok {
			total = t
		}
		if available < 0 {
			updates["available_copies"] = 0
		} else if available > total {
			updates["available_copies"] = total
		}
	}

	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a book from the catalog.
func (r *Repository) Delete(id string) error {
	result := r.db.Delete(&entities.Book{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// ListMissingMetadata returns books with no ISBN, cover or publication
// year, the candidates for enrichment.
func (r *Repository) ListMissingMetadata() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Author").
		Where("isbn = '' OR cover_url = '' OR year = 0").
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// Languages returns the distinct languages present in the catalog.
func (r *Repository) Languages() ([]string, error) {
	var languages []string
	err := r.db.Model(&entities.Book{}).
		Distinct("language").
		Where("language <> ''").
		Order("language ASC").
		Pluck("language", &languages).Error
	return languages, err
}

func intField(m map[string]any, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
