// Package models contains domain entities and business models for the dot catalog
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account that owns tags and dots. Email is the login
// identifier and is stored lower-cased; uniqueness is enforced on the
// normalized form.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	Name         string    `gorm:"size:255" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	IsActive    *bool `gorm:"default:true;index:idx_users_is_active" json:"is_active"`
	IsStaff     *bool `gorm:"default:false" json:"is_staff"`
	IsSuperuser *bool `gorm:"default:false" json:"is_superuser"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Relations; deleting a user removes everything the user owns
	Tags []Tag `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Dots []Dot `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string { return "users" }

// BeforeCreate ensures the UUID is set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	return nil
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	IsActive      *bool
	IsStaff       *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
