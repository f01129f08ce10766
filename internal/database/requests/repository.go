// Package requests provides database operations for book requests.
package requests

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// Repository handles all request database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new requests repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a request in pending state.
func (r *Repository) Create(request *entities.Request) error {
	if request.Status == "" {
		request.Status = entities.RequestStatusPending
	}
	return r.db.Create(request).Error
}

// GetByID retrieves a request.
func (r *Repository) GetByID(id string) (*entities.Request, error) {
	var request entities.Request
	err := r.db.First(&request, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByUser returns a user's requests, newest first.
func (r *Repository) ListByUser(userID string) ([]entities.Request, error) {
	var requests []entities.Request
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListAll returns every request, newest first. Admin view.
func (r *Repository) ListAll() ([]entities.Request, error) {
	var requests []entities.Request
	err := r.db.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

// UpdateStatus moves a request through the pending/approved/rejected
// workflow.
func (r *Repository) UpdateStatus(id string, status entities.RequestStatus) error {
	result := r.db.Model(&entities.Request{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a request.
func (r *Repository) Delete(id string) error {
	result := r.db.Delete(&entities.Request{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
