package models

import (
	"database/sql"
	"time"
)

type Post struct {
	ID            int64        `db:"id" json:"id"`
	UserID        int64        `db:"user_id" json:"user_id"`
	PostType      string       `db:"post_type" json:"post_type"`
	Caption       string       `db:"caption" json:"caption"`
	ScheduledTime sql.NullTime `db:"scheduled_time" json:"scheduled_time"`
	Status        string       `db:"status" json:"status"` // posted, scheduled, failed, draft
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

type MediaAsset struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	FileName        string    `db:"file_name" json:"file_name"`
	FileType        string    `db:"file_type" json:"file_type"`
	FileSize        int64     `db:"file_size" json:"file_size"`
	FileURL         string    `db:"file_url" json:"file_url"`
	BackgroundStyle string    `db:"background_style" json:"background_style"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type PostMedia struct {
	PostID       int64     `db:"post_id" json:"post_id"`
	AssetID      int64     `db:"asset_id" json:"asset_id"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	Price        string    `db:"price" json:"price"`
	Description  string    `db:"description" json:"description"`
	Comments     string    `db:"comments" json:"comments"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
	PostStatusDraft     = "draft"

	PostTypeSingle   = "single"
	PostTypeMultiple = "multiple"
)
