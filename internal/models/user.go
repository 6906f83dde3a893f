package models

import "time"

// User represents a dashboard account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         string    `json:"role"` // administrator, moderator
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role constants. Legacy records may still carry "admin"; that alias is
// normalized at the storage boundary, never compared against directly.
const (
	RoleAdministrator = "administrator"
	RoleModerator     = "moderator"
)
