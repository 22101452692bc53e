package model

import "time"

// PlacementPG model for PostgreSQL storage.
// One row per resolved map click, accepted or rejected.
type PlacementPG struct {
	ID       string  `gorm:"primaryKey;size:32" json:"id"`
	UserID   int64   `gorm:"index;not null" json:"user_id"`
	Role     Role    `gorm:"size:20;not null" json:"role"`
	Lat      float64 `gorm:"not null" json:"lat"`
	Lng      float64 `gorm:"not null" json:"lon"`
	ZoneID   *int64  `gorm:"index" json:"zone_id"`
	Accepted bool    `gorm:"not null" json:"accepted"`
	Reason   string  `gorm:"size:255" json:"reason,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the table name
func (PlacementPG) TableName() string {
	return "placements"
}
