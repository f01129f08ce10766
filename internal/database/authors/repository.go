// Package authors provides database operations for authors.
package authors

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate returns the author with the given name, creating it when
// absent. Admin book forms submit author names, not ids.
func (r *Repository) GetOrCreate(name, bio string) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Where("name = ?", name).First(&author).Error
	if err == nil {
		return &author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	author = entities.Author{Name: name, Bio: bio}
	if err := r.db.Create(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *Repository) GetByID(id string) (*entities.Author, error) {
	var author entities.Author
	err := r.db.First(&author, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *Repository) List() ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Order("name ASC").Find(&authors).Error
	return authors, err
}
