package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserConfigurableType is the owner discriminator stored for user entries.
const UserConfigurableType = "users"

// User represents a system user
type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primary_key" json:"id"`
	Username     string         `gorm:"size:191;uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Email        string         `gorm:"size:191;uniqueIndex;not null" json:"email"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) ConfigurableType() string { return UserConfigurableType }

func (u *User) ConfigurableID() string { return u.ID.String() }
