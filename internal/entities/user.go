package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole is a closed enumeration. Any other value is rejected at the
// boundary; the column is never treated as free-form text.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleStudent UserRole = "student"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r UserRole) bool {
	return r == UserRoleAdmin || r == UserRoleStudent
}

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:255" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Role         UserRole  `gorm:"size:20;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
