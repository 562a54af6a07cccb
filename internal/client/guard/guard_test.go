package guard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crm-service/internal/domain"
)

func TestLoadingRendersPlaceholder(t *testing.T) {
	view := SessionView{State: StateLoading}

	decision := Decide(view, Route{Path: "/admin/employees", AllowedRoles: []domain.Role{domain.RoleAdmin}})
	require.Equal(t, ActionRender, decision.Action)
	require.Empty(t, decision.Target)
}

func TestUnauthenticatedRedirectsToLoginWithReturnPath(t *testing.T) {
	view := SessionView{State: StateUnauthenticated}

	decision := Decide(view, Route{Path: "/admin/employees", AllowedRoles: []domain.Role{domain.RoleAdmin}})
	require.Equal(t, ActionRedirect, decision.Action)
	require.Equal(t, "/login?next=%2Fadmin%2Femployees", decision.Target)
}

func TestWrongNamespaceRedirectsToOwnHome(t *testing.T) {
	employee := SessionView{State: StateAuthenticated, Role: domain.RoleEmployee}

	decision := Decide(employee, Route{Path: "/admin/employees", AllowedRoles: []domain.Role{domain.RoleAdmin}})
	require.Equal(t, ActionRedirect, decision.Action)
	require.Equal(t, EmployeeHomePath, decision.Target)

	admin := SessionView{State: StateAuthenticated, Role: domain.RoleAdmin}
	decision = Decide(admin, Route{Path: "/employee/leads", AllowedRoles: []domain.Role{domain.RoleEmployee}})
	require.Equal(t, ActionRedirect, decision.Action)
	require.Equal(t, AdminHomePath, decision.Target)
}

func TestDisallowedRoleOutsideNamespaceGoesToUnauthorized(t *testing.T) {
	admin := SessionView{State: StateAuthenticated, Role: domain.RoleAdmin}

	// A shared-namespace route that only employees may use.
	decision := Decide(admin, Route{Path: "/reports/daily", AllowedRoles: []domain.Role{domain.RoleEmployee}})
	require.Equal(t, ActionRedirect, decision.Action)
	require.Equal(t, UnauthorizedPath, decision.Target)
}

func TestMatchingRoleRenders(t *testing.T) {
	admin := SessionView{State: StateAuthenticated, Role: domain.RoleAdmin}
	decision := Decide(admin, Route{Path: "/admin/employees", AllowedRoles: []domain.Role{domain.RoleAdmin}})
	require.Equal(t, ActionRender, decision.Action)

	employee := SessionView{State: StateAuthenticated, Role: domain.RoleEmployee}
	decision = Decide(employee, Route{Path: "/employee/leads", AllowedRoles: []domain.Role{domain.RoleEmployee}})
	require.Equal(t, ActionRender, decision.Action)
}

func TestEmptyAllowedSetAdmitsAnyAuthenticatedRole(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleEmployee} {
		view := SessionView{State: StateAuthenticated, Role: role}
		decision := Decide(view, Route{Path: "/profile"})
		require.Equal(t, ActionRender, decision.Action, "role %s", role)
	}
}

func TestNamespaceDetection(t *testing.T) {
	cases := []struct {
		path string
		role domain.Role
		ok   bool
	}{
		{"/admin", domain.RoleAdmin, true},
		{"/admin/employees", domain.RoleAdmin, true},
		{"/administrator", "", false},
		{"/employee", domain.RoleEmployee, true},
		{"/employee/leads/42", domain.RoleEmployee, true},
		{"/employees", "", false},
		{"/login", "", false},
	}
	for _, tc := range cases {
		role, ok := namespaceRole(tc.path)
		require.Equal(t, tc.ok, ok, "path %s", tc.path)
		if ok {
			require.Equal(t, tc.role, role, "path %s", tc.path)
		}
	}
}
