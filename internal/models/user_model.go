package models

import "time"

type User struct {
	ID             int64     `db:"id" json:"id"`
	GoogleID       string    `db:"google_id" json:"google_id"`
	Email          string    `db:"email" json:"email"`
	Name           string    `db:"name" json:"name"`
	ProfilePicture string    `db:"profile_picture" json:"profile_picture"`
	Role           string    `db:"role" json:"role"`     // admin, moderator, user
	Status         string    `db:"status" json:"status"` // active, inactive, suspended
	Plan           string    `db:"plan" json:"plan"`     // free, basic, premium
	LastActive     time.Time `db:"last_active" json:"last_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"

	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"

	PlanFree    = "free"
	PlanBasic   = "basic"
	PlanPremium = "premium"
)
