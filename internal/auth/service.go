package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/greyfable/masterlist/internal/access"
	"github.com/greyfable/masterlist/internal/models"
)

// ErrInvalidCredentials covers unknown email, wrong password, and inactive
// account alike so the response never reveals which check failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the slice of the credential store the authenticator needs.
type UserStore interface {
	FindByEmail(email string) (*models.User, error)
	UpdatePassword(id, passwordHash string) error
}

type Authenticator struct {
	users  UserStore
	logger *slog.Logger
}

func NewAuthenticator(users UserStore, logger *slog.Logger) *Authenticator {
	return &Authenticator{users: users, logger: logger}
}

// Authenticate verifies email+password and returns the user snapshot with
// its role normalized to the canonical form. Legacy digests that verify are
// transparently rewritten with the current scheme.
func (a *Authenticator) Authenticate(email, password string) (*models.User, error) {
	u, err := a.users.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if role, ok := access.ParseRole(u.Role); ok {
		u.Role = string(role)
	}

	if NeedsRehash(u.PasswordHash) {
		if hash, err := HashPassword(password); err == nil {
			if err := a.users.UpdatePassword(u.ID, hash); err != nil {
				a.logger.Warn("failed to rehash legacy password", "user", u.ID, "error", err)
			} else {
				u.PasswordHash = hash
			}
		}
	}

	return u, nil
}

// ChangePassword verifies the current password (any historical scheme) and
// stores the new one under the current scheme.
func (a *Authenticator) ChangePassword(u *models.User, oldPassword, newPassword string) error {
	if !VerifyPassword(oldPassword, u.PasswordHash) {
		return ErrInvalidCredentials
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := a.users.UpdatePassword(u.ID, hash); err != nil {
		return fmt.Errorf("failed to store new password: %w", err)
	}
	u.PasswordHash = hash
	return nil
}
