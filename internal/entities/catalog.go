package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Author struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255" json:"name"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Author) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

type Genre struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (g *Genre) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// Book tracks copy counts rather than a single availability flag.
// Invariant maintained by the loans repository: 0 <= AvailableCopies <= TotalCopies.
type Book struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Title           string    `gorm:"index;size:512" json:"title"`
	AuthorID        string    `gorm:"size:36;index" json:"author_id"`
	Author          *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	GenreID         string    `gorm:"size:36;index" json:"genre_id"`
	Genre           *Genre    `gorm:"foreignKey:GenreID" json:"genre,omitempty"`
	Language        string    `gorm:"size:50;index" json:"language"`
	Year            int       `json:"year,omitempty"`
	ISBN            string    `gorm:"size:20" json:"isbn,omitempty"`
	CoverURL        string    `gorm:"size:512" json:"cover_url,omitempty"`
	Description     string    `gorm:"type:text" json:"description,omitempty"`
	TotalCopies     int       `gorm:"not null;default:1" json:"total_copies"`
	AvailableCopies int       `gorm:"not null;default:1" json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Available reports whether at least one copy can be borrowed right now.
func (b *Book) Available() bool {
	return b.AvailableCopies > 0
}
