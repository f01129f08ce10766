// Package genres provides database operations for genres.
package genres

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

// GetOrCreate returns the genre with the given name, creating it when
// absent.
func (r *Repository) GetOrCreate(name string) (*entities.Genre, error) {
	var genre entities.Genre
	err := r.db.Where("name = ?", name).First(&genre).Error
	if err == nil {
		return &genre, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	genre = entities.Genre{Name: name}
	if err := r.db.Create(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *Repository) GetByID(id string) (*entities.Genre, error) {
	var genre entities.Genre
	err := r.db.First(&genre, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *Repository) List() ([]entities.Genre, error) {
	var genres []entities.Genre
	err := r.db.Order("name ASC").Find(&genres).Error
	return genres, err
}
