package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/greyfable/masterlist/internal/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create starts a new session for a user and returns its opaque id
func (r *SessionRepository) Create(userID string, ttl time.Duration) (*models.Session, error) {
	now := time.Now()
	s := &models.Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		ExpiresAt:    now.Add(ttl),
		LastActivity: now,
		CreatedAt:    now,
	}
	_, err := r.db.Exec(`
		INSERT INTO sessions (id, user_id, expires_at, last_activity, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.ExpiresAt, s.LastActivity, s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns an unexpired session, nil if missing or expired
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	s := &models.Session{}
	err := r.db.QueryRow(`
		SELECT id, user_id, expires_at, last_activity, created_at
		FROM sessions WHERE id = ? AND expires_at > ?`, id, time.Now(),
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.LastActivity, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Touch updates the last-activity marker
func (r *SessionRepository) Touch(id string) error {
	_, err := r.db.Exec("UPDATE sessions SET last_activity = ? WHERE id = ?", time.Now(), id)
	return err
}

// Delete ends one session
func (r *SessionRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	return err
}

// DeleteForUser ends every session belonging to a user. Used when an
// account is deactivated so the lockout is immediate.
func (r *SessionRepository) DeleteForUser(userID string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE user_id = ?", userID)
	return err
}

// DeleteExpired clears out expired rows
func (r *SessionRepository) DeleteExpired() (int64, error) {
	res, err := r.db.Exec("DELETE FROM sessions WHERE expires_at <= ?", time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
