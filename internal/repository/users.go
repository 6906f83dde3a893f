package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/greyfable/masterlist/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. ID and password hash must be set by the caller.
func (r *UserRepository) Create(u *models.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := r.db.Exec(`
		INSERT INTO users (id, email, username, role, password_hash, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.Role, u.PasswordHash, u.Active, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with email %s already exists", u.Email)
		}
		return err
	}
	return nil
}

// GetByID returns a user by id, nil if not found
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return r.scanOne(`
		SELECT id, email, username, role, password_hash, active, created_at, updated_at
		FROM users WHERE id = ?`, id)
}

// FindByEmail returns a user by email, nil if not found. The email column
// is COLLATE NOCASE so lookup is case-insensitive.
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	return r.scanOne(`
		SELECT id, email, username, role, password_hash, active, created_at, updated_at
		FROM users WHERE email = ?`, email)
}

// List returns all users, newest first
func (r *UserRepository) List() ([]models.User, error) {
	rows, err := r.db.Query(`
		SELECT id, email, username, role, password_hash, active, created_at, updated_at
		FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.Role, &u.PasswordHash,
			&u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update rewrites the mutable profile fields
func (r *UserRepository) Update(u *models.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.db.Exec(`
		UPDATE users SET email = ?, username = ?, role = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		u.Email, u.Username, u.Role, u.Active, u.UpdatedAt, u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with email %s already exists", u.Email)
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePassword replaces the stored digest
func (r *UserRepository) UpdatePassword(id, passwordHash string) error {
	_, err := r.db.Exec(
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, time.Now(), id,
	)
	return err
}

// Delete removes a user row. Only reachable from the operator CLI; the API
// deactivates instead, and the activity log lives in a separate store so
// the audit trail survives either way.
func (r *UserRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	return err
}

func (r *UserRepository) scanOne(query string, args ...any) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRow(query, args...).Scan(
		&u.ID, &u.Email, &u.Username, &u.Role, &u.PasswordHash,
		&u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
