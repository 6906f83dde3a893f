package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/greyfable/masterlist/internal/access"
	"github.com/greyfable/masterlist/internal/auth"
	"github.com/greyfable/masterlist/internal/models"
	"github.com/greyfable/masterlist/internal/repository"
)

// UserList returns all accounts, newest first. Administrator only.
func (h *Handlers) UserList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	h.respondJSON(w, http.StatusOK, users)
}

type userCreateRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// UserCreate adds a new account. Administrator only.
func (h *Handlers) UserCreate(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Username == "" {
		h.respondError(w, http.StatusBadRequest, "Email and username are required")
		return
	}
	if len(req.Password) < 10 {
		h.respondError(w, http.StatusBadRequest, "Password must be at least 10 characters")
		return
	}
	role, ok := access.ParseRole(req.Role)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Role must be administrator or moderator")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	u := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		Role:         string(role),
		PasswordHash: hash,
		Active:       true,
	}
	if err := h.users.Create(u); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.recordActivity(models.ActivityEntry{
		Action:  models.ActionUserEdit,
		Actor:   userFromContext(r.Context()).Username,
		Subject: u.Username,
		Detail:  fmt.Sprintf("Created user %s (%s)", u.Username, u.Role),
	})

	h.respondJSON(w, http.StatusCreated, u)
}

type userUpdateRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
}

// UserUpdate edits an account. Role changes and deactivations get their own
// audit entries; a deactivated user's sessions are ended immediately.
func (h *Handlers) UserUpdate(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("failed to load user", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	if u == nil {
		h.respondError(w, http.StatusNotFound, "User not found")
		return
	}

	var req userUpdateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	priorRole := u.Role
	priorActive := u.Active

	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Username != "" {
		u.Username = req.Username
	}
	if req.Role != "" {
		role, ok := access.ParseRole(req.Role)
		if !ok {
			h.respondError(w, http.StatusBadRequest, "Role must be administrator or moderator")
			return
		}
		u.Role = string(role)
	}
	if req.Active != nil {
		u.Active = *req.Active
	}

	actor := userFromContext(r.Context())
	if u.ID == actor.ID && (!u.Active || u.Role != models.RoleAdministrator) {
		h.respondError(w, http.StatusBadRequest, "Cannot deactivate or demote your own account")
		return
	}

	if err := h.users.Update(u); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if priorActive && !u.Active {
		if err := h.sessions.DeleteForUser(u.ID); err != nil {
			h.logger.Warn("failed to end sessions for deactivated user", "user", u.ID, "error", err)
		}
	}

	if u.Role != priorRole {
		h.recordActivity(models.ActivityEntry{
			Action:  models.ActionRoleChange,
			Actor:   actor.Username,
			Subject: u.Username,
			Detail:  fmt.Sprintf("Changed role of %s from %s to %s", u.Username, priorRole, u.Role),
		})
	}
	h.recordActivity(models.ActivityEntry{
		Action:  models.ActionUserEdit,
		Actor:   actor.Username,
		Subject: u.Username,
		Detail:  fmt.Sprintf("Updated user %s", u.Username),
	})

	h.respondJSON(w, http.StatusOK, u)
}

// RestrictionFlagsGet returns the global restriction flags
func (h *Handlers) RestrictionFlagsGet(w http.ResponseWriter, r *http.Request) {
	flags, err := h.settings.RestrictionFlags()
	if err != nil {
		h.logger.Error("failed to read restriction flags", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to read restriction flags")
		return
	}
	h.respondJSON(w, http.StatusOK, flags)
}

// RestrictionFlagsUpdate toggles the global restriction flags.
// Administrator only; every change is audited.
func (h *Handlers) RestrictionFlagsUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.RestrictionFlags
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.settings.SetBool(repository.KeyMaintenanceMode, req.MaintenanceMode); err != nil {
		h.logger.Error("failed to store flag", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to store restriction flags")
		return
	}
	if err := h.settings.SetBool(repository.KeyFirstTimeRestriction, req.FirstTimeRestriction); err != nil {
		h.logger.Error("failed to store flag", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to store restriction flags")
		return
	}

	h.recordActivity(models.ActivityEntry{
		Action:  models.ActionAdminEdit,
		Actor:   userFromContext(r.Context()).Username,
		Subject: "restrictions",
		Detail: fmt.Sprintf("Set maintenance_mode=%v first_time_restriction=%v",
			req.MaintenanceMode, req.FirstTimeRestriction),
	})

	h.respondJSON(w, http.StatusOK, req)
}
