package models

import "time"

// Dot field limits. Rating bounds are enforced at write time, out-of-range
// values are rejected rather than clamped.
const (
	MaxDotNameLen        = 255
	MaxDotDescriptionLen = 350
	MaxDotCoordinateLen  = 20
	MaxDotLinkLen        = 255
	MinDotRating         = 0.0
	MaxDotRating         = 5.0
)

// Dot represents a user-owned point of interest with coordinates, a rating
// and a set of tags. Coordinates are stored as string-encoded decimals to
// preserve the caller's precision exactly.
// Table: dots, join table: dot_tags
type Dot struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	UserID      uint    `gorm:"not null;index:idx_dots_user_id" json:"user_id"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"size:350" json:"description"`
	Lon         string  `gorm:"size:20;not null" json:"lon"`
	Lat         string  `gorm:"size:20;not null" json:"lat"`
	Rating      float64 `gorm:"not null;default:0" json:"rating"`
	Link        string  `gorm:"size:255" json:"link"`
	Image       *string `gorm:"size:500" json:"image,omitempty"` // stored blob path, uploads/dot/<uuid><ext>

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_dots_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Tags []Tag `gorm:"many2many:dot_tags;constraint:OnDelete:CASCADE" json:"tags"`
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Dot) TableName() string { return "dots" }

// TagIDs returns the ids of the dot's loaded tag set.
func (d *Dot) TagIDs() []uint {
	ids := make([]uint, 0, len(d.Tags))
	for _, t := range d.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// DotFilter represents filter criteria for dot queries
type DotFilter struct {
	ID            *uint
	UserID        *uint
	Name          *string
	TagIDs        []uint // match dots whose tag set intersects this set
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
