// Package access centralizes every allow/deny decision for the admin area.
// All guarded entry points (HTTP middleware, CLI checks) call Evaluate with
// explicit inputs; nothing in here reads ambient state.
package access

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleModerator     Role = "moderator"

	// RoleAny is only valid as a requirement, never as an account role.
	RoleAny Role = "any"
)

// ParseRole normalizes a stored role string to its canonical value.
// The legacy alias "admin" maps to RoleAdministrator. Unknown strings
// return false; callers must fail closed.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "administrator", "admin":
		return RoleAdministrator, true
	case "moderator":
		return RoleModerator, true
	default:
		return "", false
	}
}

// Satisfies reports whether an account role meets a requirement.
// RoleAdministrator does not satisfy an exact RoleModerator requirement.
func (r Role) Satisfies(required Role) bool {
	if required == RoleAny {
		return r == RoleAdministrator || r == RoleModerator
	}
	return r == required
}

// Reason explains a Decision.
type Reason string

const (
	ReasonAllowed                Reason = "ALLOWED"
	ReasonMaintenanceMode        Reason = "MAINTENANCE_MODE"
	ReasonFirstTimeRestriction   Reason = "FIRST_TIME_RESTRICTION"
	ReasonAuthenticationRequired Reason = "AUTHENTICATION_REQUIRED"
	ReasonInsufficientPrivilege  Reason = "INSUFFICIENT_PRIVILEGE"
)

// Redirect targets, relative URLs into the dashboard.
const (
	PageLanding  = "/"
	PageLogin    = "/login"
	PageAdmin    = "/masterlist"
	PageSettings = "/settings"
)

// Request is one access check. Role is the raw string from the session
// snapshot; it is normalized here, at the boundary.
type Request struct {
	HasSession           bool
	Role                 string
	MaintenanceMode      bool
	FirstTimeRestriction bool
	RequiredRole         Role
}

// Decision is the outcome of an access check.
type Decision struct {
	Allowed        bool
	RedirectTarget string
	Reason         Reason
}

// Evaluate applies the restriction checks in strict precedence order:
// maintenance mode, then first-time restriction, then authentication,
// then role. First match wins. Malformed roles are treated as an absent
// session.
func Evaluate(req Request) Decision {
	if req.MaintenanceMode {
		return Decision{Allowed: false, RedirectTarget: PageLanding, Reason: ReasonMaintenanceMode}
	}
	if req.FirstTimeRestriction {
		return Decision{Allowed: false, RedirectTarget: PageLanding, Reason: ReasonFirstTimeRestriction}
	}
	if !req.HasSession {
		return Decision{Allowed: false, RedirectTarget: PageLogin, Reason: ReasonAuthenticationRequired}
	}

	role, ok := ParseRole(req.Role)
	if !ok {
		return Decision{Allowed: false, RedirectTarget: PageLogin, Reason: ReasonAuthenticationRequired}
	}

	required := req.RequiredRole
	if required == "" {
		required = RoleAny
	}
	if !role.Satisfies(required) {
		// Already authenticated: send them somewhere their role can use,
		// never back to login.
		target := PageSettings
		if role == RoleAdministrator {
			target = PageAdmin
		}
		return Decision{Allowed: false, RedirectTarget: target, Reason: ReasonInsufficientPrivilege}
	}

	return Decision{Allowed: true, Reason: ReasonAllowed}
}
