// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail("admin@library.com")
package users

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a user. The caller is responsible for hashing the
// password; this layer never sees plaintext.
func (r *Repository) Create(user *entities.User) error {
	var existing entities.User
	err := r.db.Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		return database.ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	// The unique index on email backs the check above up when two
	// creates race.
	return translateConstraint(r.db.Create(user).Error)
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id string) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users ordered by creation time.
func (r *Repository) List() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

// Update applies a partial update to a user. Changing the email to one
// already registered fails with database.ErrEmailExists.
func (r *Repository) Update(id string, updates map[string]any) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateConstraint(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a user.
func (r *Repository) Delete(id string) error {
	result := r.db.Delete(&entities.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Count returns the number of registered users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// translateConstraint maps the unique-index violation on email to the
// sentinel the HTTP layer turns into a conflict response.
func translateConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return database.ErrEmailExists
	}
	return err
}
