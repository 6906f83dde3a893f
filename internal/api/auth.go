package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/greyfable/masterlist/internal/auth"
	"github.com/greyfable/masterlist/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and starts a session. All authentication failures
// produce the same message and status.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.auth.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.LoginFailedTotal.Inc()
			h.respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("authentication failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Authentication temporarily unavailable")
		return
	}

	sess, err := h.sessions.Create(user.ID, h.cfg.Auth.SessionTTL)
	if err != nil {
		h.logger.Error("failed to create session", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, h.sessionCookie(sess.ID, sess.ExpiresAt))
	h.metrics.LoginSuccessTotal.Inc()

	h.respondJSON(w, http.StatusOK, user)
}

// Logout ends the current session
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Warn("failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0)))
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user's snapshot
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, userFromContext(r.Context()))
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword lets the authenticated user rotate their own password
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req changePasswordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if len(req.NewPassword) < 10 {
		h.respondError(w, http.StatusBadRequest, "New password must be at least 10 characters")
		return
	}

	if err := h.auth.ChangePassword(user, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("failed to change password", "user", user.ID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	h.recordActivity(models.ActivityEntry{
		Action:  models.ActionPasswordChange,
		Actor:   user.Username,
		Subject: user.Username,
		Detail:  "Changed own password",
	})

	h.respondJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

func (h *Handlers) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   !h.cfg.Auth.InsecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// recordActivity appends an audit entry best-effort and keeps the metrics
// honest about drops.
func (h *Handlers) recordActivity(e models.ActivityEntry) {
	if err := h.activity.Record(e); err != nil {
		h.metrics.ActivityDroppedTotal.Inc()
		h.logger.Error("activity log write failed",
			"action", e.Action, "actor", e.Actor, "subject", e.Subject, "error", err)
		return
	}
	h.metrics.ActivityAppendedTotal.WithLabelValues(e.Action).Inc()
}
