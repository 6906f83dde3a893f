package api

import (
	"context"
	"net/http"

	"github.com/greyfable/masterlist/internal/access"
	"github.com/greyfable/masterlist/internal/models"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// SessionCookie is the name of the session cookie.
const SessionCookie = "session"

// userFromContext returns the authenticated user, nil when anonymous
func userFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxKeyUser).(*models.User)
	return u
}

// Session resolves the session cookie into a user snapshot and stores it in
// the request context. A missing, expired, or orphaned session just leaves
// the request anonymous; the access guard makes the deny decision.
func (h *Handlers) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := h.sessions.Get(cookie.Value)
		if err != nil {
			h.logger.Error("session lookup failed", "error", err)
			h.respondError(w, http.StatusInternalServerError, "Session lookup failed")
			return
		}
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.users.GetByID(sess.UserID)
		if err != nil {
			h.logger.Error("user lookup failed", "error", err)
			h.respondError(w, http.StatusInternalServerError, "User lookup failed")
			return
		}
		if user == nil || !user.Active {
			// Credential store row is gone or disabled: the session is no
			// longer valid. Fail closed and clean up.
			if err := h.sessions.Delete(sess.ID); err != nil {
				h.logger.Warn("failed to delete stale session", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		if err := h.sessions.Touch(sess.ID); err != nil {
			h.logger.Warn("failed to touch session", "error", err)
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Guard denies the request unless the access evaluator allows it. Every
// guarded route goes through this one code path; nothing else re-implements
// the precedence rules.
func (h *Handlers) Guard(required access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			flags, err := h.settings.RestrictionFlags()
			if err != nil {
				h.logger.Error("failed to read restriction flags", "error", err)
				h.respondError(w, http.StatusInternalServerError, "Failed to read restriction flags")
				return
			}

			user := userFromContext(r.Context())
			req := access.Request{
				HasSession:           user != nil,
				MaintenanceMode:      flags.MaintenanceMode,
				FirstTimeRestriction: flags.FirstTimeRestriction,
				RequiredRole:         required,
			}
			if user != nil {
				req.Role = user.Role
			}

			decision := access.Evaluate(req)
			if !decision.Allowed {
				h.metrics.AccessDeniedTotal.WithLabelValues(string(decision.Reason)).Inc()
				h.respondJSON(w, denyStatus(decision.Reason), map[string]string{
					"error":    "Access denied",
					"reason":   string(decision.Reason),
					"redirect": decision.RedirectTarget,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func denyStatus(reason access.Reason) int {
	switch reason {
	case access.ReasonMaintenanceMode:
		return http.StatusServiceUnavailable
	case access.ReasonAuthenticationRequired:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}
