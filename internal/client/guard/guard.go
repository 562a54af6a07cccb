// Package guard makes client-side navigation decisions: render, or redirect
// before a protected view appears. It mirrors the server's authorization gate
// but is advisory UX only — the server re-checks every request.
package guard

import (
	"net/url"
	"strings"

	"github.com/spec-kit/crm-service/internal/domain"
)

// Well-known client routes.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	AdminHomePath    = "/admin"
	EmployeeHomePath = "/employee"
)

// State is the session resolution state. Loading means resolution has not
// finished yet; deciding anything before then causes redirect flicker.
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

// SessionView is the guard's read of the client session.
type SessionView struct {
	State State
	Role  domain.Role
}

// Route describes the navigation target.
type Route struct {
	Path         string
	AllowedRoles []domain.Role
}

// Action is what the shell should do with the navigation.
type Action int

const (
	ActionRender Action = iota
	ActionRedirect
)

// Decision is the guard's verdict. Target is set for redirects only.
type Decision struct {
	Action Action
	Target string
}

func render() Decision {
	return Decision{Action: ActionRender}
}

func redirect(target string) Decision {
	return Decision{Action: ActionRedirect, Target: target}
}

// Decide resolves (session, route) to a navigation decision.
//
// Loading renders a placeholder and never redirects. Unauthenticated goes to
// the login route with the requested path preserved for post-login return.
// Authenticated sessions are first checked against the path's role namespace
// (a wrong-subtree visit bounces to the role's own home), then against the
// route's allowed-role set. Roles are exact-match; admin carries no implicit
// employee permission.
func Decide(view SessionView, route Route) Decision {
	switch view.State {
	case StateLoading:
		return render()

	case StateUnauthenticated:
		return redirect(LoginPath + "?next=" + url.QueryEscape(route.Path))

	case StateAuthenticated:
		if ns, ok := namespaceRole(route.Path); ok && ns != view.Role {
			return redirect(homePath(view.Role))
		}
		if !roleAllowed(view.Role, route.AllowedRoles) {
			return redirect(UnauthorizedPath)
		}
		return render()

	default:
		// Unknown state reads as no session: fail closed.
		return redirect(LoginPath + "?next=" + url.QueryEscape(route.Path))
	}
}

// namespaceRole maps a path to the role owning its subtree, if any.
func namespaceRole(path string) (domain.Role, bool) {
	switch {
	case path == AdminHomePath || strings.HasPrefix(path, AdminHomePath+"/"):
		return domain.RoleAdmin, true
	case path == EmployeeHomePath || strings.HasPrefix(path, EmployeeHomePath+"/"):
		return domain.RoleEmployee, true
	default:
		return "", false
	}
}

func homePath(role domain.Role) string {
	if role == domain.RoleAdmin {
		return AdminHomePath
	}
	return EmployeeHomePath
}

func roleAllowed(role domain.Role, allowed []domain.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
