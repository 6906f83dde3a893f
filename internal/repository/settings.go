package repository

import (
	"database/sql"
	"time"

	"github.com/greyfable/masterlist/internal/models"
)

// Setting keys for the global restriction flags.
const (
	KeyMaintenanceMode      = "maintenance_mode"
	KeyFirstTimeRestriction = "first_time_restriction"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns a setting value, "" if unset
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set writes a setting value
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// GetBool reads a flag; anything other than "true" is false
func (r *SettingsRepository) GetBool(key string) (bool, error) {
	v, err := r.Get(key)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetBool writes a flag
func (r *SettingsRepository) SetBool(key string, value bool) error {
	v := "false"
	if value {
		v = "true"
	}
	return r.Set(key, v)
}

// RestrictionFlags reads both global restrictions in one call so every
// guarded request sees a consistent pair.
func (r *SettingsRepository) RestrictionFlags() (models.RestrictionFlags, error) {
	var flags models.RestrictionFlags
	var err error
	if flags.MaintenanceMode, err = r.GetBool(KeyMaintenanceMode); err != nil {
		return flags, err
	}
	if flags.FirstTimeRestriction, err = r.GetBool(KeyFirstTimeRestriction); err != nil {
		return flags, err
	}
	return flags, nil
}
