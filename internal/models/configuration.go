package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/nebari-dev/modelconfig/internal/valuetype"
	"gorm.io/gorm"
)

// Configurable is implemented by any entity that can own configuration
// entries. Entries reference their owner by (type, id), never by foreign key.
type Configurable interface {
	ConfigurableType() string
	ConfigurableID() string
}

// Configuration is a single typed key/value entry owned by a Configurable.
// At most one row exists per (configurable_id, configurable_type, key).
type Configuration struct {
	ID               uuid.UUID      `gorm:"type:varchar(36);primary_key" json:"id"`
	Key              string         `gorm:"size:191;not null;uniqueIndex:idx_configurations_owner_key,priority:3" json:"key"`
	Value            JSONValue      `gorm:"not null" json:"value"`
	ConfigurableType string         `gorm:"size:191;not null;uniqueIndex:idx_configurations_owner_key,priority:2" json:"configurable_type"`
	ConfigurableID   string         `gorm:"size:64;not null;uniqueIndex:idx_configurations_owner_key,priority:1" json:"configurable_id"`
	Type             valuetype.Type `gorm:"size:16;not null;default:'string'" json:"type"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TableName pins the table so decorated entry types share it.
func (Configuration) TableName() string {
	return "configurations"
}

// BeforeCreate hook to generate UUID
func (c *Configuration) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Entry returns the base entry. Decorating types inherit it by embedding.
func (c *Configuration) Entry() *Configuration {
	return c
}

// Record is satisfied by pointers to any persisted entry type built on
// Configuration.
type Record[T any] interface {
	*T
	Entry() *Configuration
}

// VersionedConfiguration is a Configuration that counts how many times it has
// been written.
type VersionedConfiguration struct {
	Configuration
	Revision int `gorm:"not null;default:0" json:"revision"`
}

// BeforeSave bumps the revision on every create and update.
func (c *VersionedConfiguration) BeforeSave(tx *gorm.DB) error {
	c.Revision++
	return nil
}
