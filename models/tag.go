package models

import "time"

// Tag represents a user-owned label used to categorize dots.
// Table: tags
// Names are free text and not unique per user
// Ownership never changes after creation
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_tags_user_id" json:"user_id"`
	Name      string    `gorm:"size:255;not null;index:idx_tags_name" json:"name"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_tags_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Tag) TableName() string { return "tags" }

// TagFilter represents filter criteria for tag queries
type TagFilter struct {
	ID            *uint
	UserID        *uint
	Name          *string
	AssignedOnly  *bool // only tags referenced by at least one dot
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
