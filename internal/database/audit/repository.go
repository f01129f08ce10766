// Package audit records authentication and admin actions.
package audit

import (
	"log"

	"gorm.io/gorm"

	"github.com/shelfmark/shelfmark/internal/entities"
)

// Repository handles audit event persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record stores an audit event. Failures are logged and swallowed: an
// audit write must never fail the request it describes.
func (r *Repository) Record(userID string, eventType entities.AuditEventType, action, entityID, ip string) {
	event := entities.AuditEvent{
		UserID:    userID,
		EventType: eventType,
		Action:    action,
		EntityID:  entityID,
		IPAddress: ip,
	}
	if err := r.db.Create(&event).Error; err != nil {
		log.Printf("failed to record audit event %s/%s: %v", eventType, action, err)
	}
}

// ListRecent returns the most recent events, newest first.
func (r *Repository) ListRecent(limit int) ([]entities.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var events []entities.AuditEvent
	err := r.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}
