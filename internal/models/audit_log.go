package models

import (
	"time"
)

// AuditLog records a change made to an owner's configuration
type AuditLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	OwnerType   string    `gorm:"size:191;not null;index:idx_audit_owner" json:"owner_type"`
	OwnerID     string    `gorm:"size:64;not null;index:idx_audit_owner" json:"owner_id"`
	Action      string    `gorm:"not null" json:"action"`        // e.g., "create_configuration", "update_configuration"
	Resource    string    `gorm:"not null" json:"resource"`      // e.g., "configuration:theme_preference"
	DetailsJSON string    `gorm:"type:text" json:"details_json"` // Additional context in JSON
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}
