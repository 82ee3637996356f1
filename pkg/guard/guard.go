// Package guard gates access to role-restricted views. The core is a
// stateless decision function over the current session, the
// rehydration readiness flag, and a route's required roles.
package guard

import (
	"fmt"
	"strings"

	"github.com/edulane/edulane-go/pkg/session"
)

// Role is a view's access requirement. The platform's user model keys
// everything off a single educator flag, but roles are an enumeration
// from the start so adding one is a new constant, not a type change.
type Role int

const (
	// RoleStudent is satisfied by non-educator users.
	RoleStudent Role = iota
	// RoleEducator is satisfied by educator users.
	RoleEducator
)

// String returns the role's wire name.
func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleEducator:
		return "educator"
	default:
		return "unknown"
	}
}

// ParseRole parses a role name as declared by a protected view.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, nil
	case "educator":
		return RoleEducator, nil
	default:
		return 0, fmt.Errorf("guard: unknown role %q", s)
	}
}

// Decision is the guard's verdict for a render of a protected view.
type Decision int

const (
	// DecisionPending means rehydration (or a login) is still in
	// flight: render a loading placeholder, never redirect.
	DecisionPending Decision = iota
	// DecisionRedirectLogin means the session is unauthenticated.
	DecisionRedirectLogin
	// DecisionRedirectUnauthorized means the user is authenticated but
	// satisfies none of the required roles.
	DecisionRedirectUnauthorized
	// DecisionAllow means the protected content may render.
	DecisionAllow
)

// String returns a readable name for logging.
func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectUnauthorized:
		return "redirect-unauthorized"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Satisfies reports whether the user meets a role requirement:
// educator iff the educator flag is set, student iff it is not.
func Satisfies(user *session.User, role Role) bool {
	if user == nil {
		return false
	}
	switch role {
	case RoleEducator:
		return user.IsEducator
	case RoleStudent:
		return !user.IsEducator
	default:
		return false
	}
}

// Evaluate decides the outcome for one render of a protected view.
// ready is the rehydrator's monotonic completion flag; until it is
// true no redirect decision may be made, otherwise a reload of a
// protected view would bounce a legitimately authenticated user to the
// login page before rehydration finishes. An empty role set requires
// authentication only.
func Evaluate(sess session.Session, ready bool, roles []Role) Decision {
	if !ready || sess.Loading {
		return DecisionPending
	}
	if !sess.IsAuthenticated {
		return DecisionRedirectLogin
	}
	if len(roles) > 0 {
		satisfied := false
		for _, role := range roles {
			if Satisfies(sess.User, role) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return DecisionRedirectUnauthorized
		}
	}
	return DecisionAllow
}
