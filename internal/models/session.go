package models

import "time"

// Session is one authenticated browser session
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
}

// RestrictionFlags are the two global access restrictions. They are read
// fresh per request and passed explicitly into the access evaluator.
type RestrictionFlags struct {
	MaintenanceMode      bool `json:"maintenance_mode"`
	FirstTimeRestriction bool `json:"first_time_restriction"`
}
