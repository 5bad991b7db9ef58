package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nebari-dev/modelconfig/internal/models"
	"gorm.io/gorm"
)

// LogAction records an audit log entry for an owner
func LogAction(ctx context.Context, db *gorm.DB, owner models.Configurable, action, resource string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	log := models.AuditLog{
		OwnerType:   owner.ConfigurableType(),
		OwnerID:     owner.ConfigurableID(),
		Action:      action,
		Resource:    resource,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now(),
	}

	return db.WithContext(ctx).Create(&log).Error
}

// ForOwner returns an owner's audit trail, newest first
func ForOwner(ctx context.Context, db *gorm.DB, owner models.Configurable) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.WithContext(ctx).
		Where(map[string]any{"owner_type": owner.ConfigurableType(), "owner_id": owner.ConfigurableID()}).
		Order("timestamp DESC, id DESC").
		Find(&logs).Error
	return logs, err
}

// Audit actions constants
const (
	ActionCreateConfiguration = "create_configuration"
	ActionUpdateConfiguration = "update_configuration"
)
