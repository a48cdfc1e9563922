package models

import "time"

// Settings holds per-user composer defaults. PostingTime seeds the schedule
// target time of a fresh composer, DefaultPlatforms its enabled set.
type Settings struct {
	ID               int64     `db:"id" json:"id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	PostingTime      string    `db:"posting_time" json:"posting_time"` // HH:MM
	DefaultPlatforms string    `db:"default_platforms" json:"default_platforms"`
	BrandName        string    `db:"brand_name" json:"brand_name"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
