package api

import (
	"net/http"
	"testing"

	"github.com/greyfable/masterlist/internal/models"
)

func TestUserCreateAndRoleChangeAudited(t *testing.T) {
	env := setupTestServer(t)
	env.seedUser(t, "boss@example.com", "boss", models.RoleAdministrator, "boss-password-1", true)
	cookie := env.login(t, "boss@example.com", "boss-password-1")

	rec := env.request(t, http.MethodPost, "/api/v1/users", map[string]string{
		"email":    "new@example.com",
		"username": "newmod",
		"role":     "moderator",
		"password": "mod-password-1",
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %s", rec.Code, rec.Body.String())
	}
	var created models.User
	decodeBody(t, rec, &created)

	// Promote with the legacy alias; it normalizes at the boundary
	rec = env.request(t, http.MethodPut, "/api/v1/users/"+created.ID,
		map[string]string{"role": "admin"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body %s", rec.Code, rec.Body.String())
	}
	var updated models.User
	decodeBody(t, rec, &updated)
	if updated.Role != models.RoleAdministrator {
		t.Errorf("role = %q, want administrator", updated.Role)
	}

	rec = env.request(t, http.MethodGet, "/api/v1/activity?action=ROLE_CHANGE", nil, cookie)
	var page struct {
		Entries []models.ActivityEntry `json:"entries"`
		Total   int                    `json:"total"`
	}
	decodeBody(t, rec, &page)
	if page.Total != 1 {
		t.Fatalf("ROLE_CHANGE entries = %d, want 1", page.Total)
	}
	if page.Entries[0].Subject != "newmod" || page.Entries[0].Actor != "boss" {
		t.Errorf("role change entry = %+v", page.Entries[0])
	}
}

func TestUserCannotDemoteSelf(t *testing.T) {
	env := setupTestServer(t)
	env.seedUser(t, "boss@example.com", "boss", models.RoleAdministrator, "boss-password-1", true)
	cookie := env.login(t, "boss@example.com", "boss-password-1")

	boss, err := env.handlers.users.FindByEmail("boss@example.com")
	if err != nil || boss == nil {
		t.Fatalf("failed to load boss: %v", err)
	}

	rec := env.request(t, http.MethodPut, "/api/v1/users/"+boss.ID,
		map[string]string{"role": "moderator"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("self-demotion status = %d, want 400", rec.Code)
	}

	active := false
	rec = env.request(t, http.MethodPut, "/api/v1/users/"+boss.ID,
		map[string]any{"active": &active}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("self-deactivation status = %d, want 400", rec.Code)
	}
}

func TestUserDeactivationEndsSessions(t *testing.T) {
	env := setupTestServer(t)
	env.seedUser(t, "boss@example.com", "boss", models.RoleAdministrator, "boss-password-1", true)
	env.seedUser(t, "mod@example.com", "mod", models.RoleModerator, "mod-password-1", true)

	bossCookie := env.login(t, "boss@example.com", "boss-password-1")
	modCookie := env.login(t, "mod@example.com", "mod-password-1")

	mod, err := env.handlers.users.FindByEmail("mod@example.com")
	if err != nil || mod == nil {
		t.Fatalf("failed to load mod: %v", err)
	}

	active := false
	rec := env.request(t, http.MethodPut, "/api/v1/users/"+mod.ID,
		map[string]any{"active": &active}, bossCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate status = %d body %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodGet, "/api/v1/characters", nil, modCookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("deactivated user's request status = %d, want 401", rec.Code)
	}
}

func TestChangeOwnPassword(t *testing.T) {
	env := setupTestServer(t)
	env.seedUser(t, "mod@example.com", "mod", models.RoleModerator, "old-password-1", true)
	cookie := env.login(t, "mod@example.com", "old-password-1")

	rec := env.request(t, http.MethodPost, "/api/v1/auth/password", map[string]string{
		"old_password": "wrong-old",
		"new_password": "new-password-1",
	}, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong old password status = %d, want 401", rec.Code)
	}

	rec = env.request(t, http.MethodPost, "/api/v1/auth/password", map[string]string{
		"old_password": "old-password-1",
		"new_password": "new-password-1",
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("change password status = %d body %s", rec.Code, rec.Body.String())
	}

	// New password works, old one does not
	env.login(t, "mod@example.com", "new-password-1")
	rec = env.request(t, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "mod@example.com", "password": "old-password-1"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("old password still accepted: status = %d", rec.Code)
	}

	// Audited as PASSWORD_CHANGE
	rec = env.request(t, http.MethodGet, "/api/v1/activity?action=PASSWORD_CHANGE", nil, cookie)
	var page struct {
		Total int `json:"total"`
	}
	decodeBody(t, rec, &page)
	if page.Total != 1 {
		t.Errorf("PASSWORD_CHANGE entries = %d, want 1", page.Total)
	}
}

func TestRestrictionFlagToggleAudited(t *testing.T) {
	env := setupTestServer(t)
	env.seedUser(t, "boss@example.com", "boss", models.RoleAdministrator, "boss-password-1", true)
	cookie := env.login(t, "boss@example.com", "boss-password-1")

	rec := env.request(t, http.MethodPut, "/api/v1/settings/restrictions", map[string]bool{
		"maintenance_mode":       false,
		"first_time_restriction": true,
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update flags status = %d body %s", rec.Code, rec.Body.String())
	}

	// The flag takes effect immediately, locking out even the admin who
	// set it; the admin endpoints themselves are behind the same guard.
	rec = env.request(t, http.MethodGet, "/api/v1/settings/restrictions", nil, cookie)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status after first-time flag = %d, want 403", rec.Code)
	}
}
