package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusReturned LoanStatus = "returned"
	LoanStatusOverdue  LoanStatus = "overdue"
)

// Loan records a user borrowing one copy of a book until DueAt.
type Loan struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     string     `gorm:"size:36;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"-"`
	BookID     string     `gorm:"size:36;index" json:"book_id"`
	Book       *Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at"`
	Status     LoanStatus `gorm:"size:20;index" json:"status"`
}

func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// EffectiveStatus derives the status at read time: a loan past its due
// date with no return recorded is overdue even if the nightly sweep has
// not persisted that yet.
func (l *Loan) EffectiveStatus(now time.Time) LoanStatus {
	if l.ReturnedAt != nil {
		return LoanStatusReturned
	}
	if now.After(l.DueAt) {
		return LoanStatusOverdue
	}
	return LoanStatusActive
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Request is a user's ask for a book, either by catalog reference or as
// free text for titles the library does not hold.
type Request struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	UserID    string        `gorm:"size:36;index" json:"user_id"`
	User      *User         `gorm:"foreignKey:UserID" json:"-"`
	BookID    string        `gorm:"size:36;index" json:"book_id,omitempty"`
	Title     string        `gorm:"size:512" json:"title,omitempty"`
	Author    string        `gorm:"size:255" json:"author,omitempty"`
	Reason    string        `gorm:"type:text" json:"reason,omitempty"`
	Status    RequestStatus `gorm:"size:20;index" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// WishlistEntry is unique per (user, book); adding twice is a no-op.
type WishlistEntry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;uniqueIndex:idx_wishlist_user_book" json:"user_id"`
	BookID    string    `gorm:"size:36;uniqueIndex:idx_wishlist_user_book" json:"book_id"`
	Book      *Book     `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (w *WishlistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// Review holds one rating per (user, book); re-reviewing updates in place.
type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;uniqueIndex:idx_review_user_book" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	BookID    string    `gorm:"size:36;uniqueIndex:idx_review_user_book" json:"book_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Text      string    `gorm:"type:text" json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
