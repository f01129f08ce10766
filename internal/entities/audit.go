package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditEventType string

const (
	AuditEventAuth    AuditEventType = "auth"
	AuditEventCatalog AuditEventType = "catalog"
	AuditEventUsers   AuditEventType = "users"
	AuditEventLoans   AuditEventType = "loans"
)

// AuditEvent records authentication and admin actions for later review.
type AuditEvent struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	UserID     string         `gorm:"size:36;index" json:"user_id"`
	EventType  AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action     string         `gorm:"size:100" json:"action"`
	EntityID   string         `gorm:"size:36;index" json:"entity_id,omitempty"`
	IPAddress  string         `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

func (e *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
