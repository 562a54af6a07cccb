package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crm-service/internal/domain"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de))
	return de.Code
}

func TestAuthorizeAllowsMember(t *testing.T) {
	admin := &domain.Principal{ID: "p1", Role: domain.RoleAdmin}

	require.NoError(t, Authorize(admin, domain.RoleAdmin))
	require.NoError(t, Authorize(admin, domain.RoleAdmin, domain.RoleEmployee))
}

func TestAuthorizeDeniesNonMember(t *testing.T) {
	employee := &domain.Principal{ID: "p1", Role: domain.RoleEmployee}

	err := Authorize(employee, domain.RoleAdmin)
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestAuthorizeNoRoleHierarchy(t *testing.T) {
	// Admin must not implicitly satisfy an employee-only set.
	admin := &domain.Principal{ID: "p1", Role: domain.RoleAdmin}

	err := Authorize(admin, domain.RoleEmployee)
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestAuthorizeIsDeterministic(t *testing.T) {
	employee := &domain.Principal{ID: "p1", Role: domain.RoleEmployee}

	for i := 0; i < 100; i++ {
		require.NoError(t, Authorize(employee, domain.RoleEmployee))
		require.Error(t, Authorize(employee, domain.RoleAdmin))
	}
}

func TestAuthorizeUnknownRoleIsInternalError(t *testing.T) {
	broken := &domain.Principal{ID: "p1", Role: domain.Role("SUPERUSER")}

	err := Authorize(broken, domain.RoleAdmin)
	require.Error(t, err)
	require.Equal(t, "INTERNAL_ERROR", domainCode(t, err))
}

func TestAuthorizeNilPrincipal(t *testing.T) {
	err := Authorize(nil, domain.RoleAdmin)
	require.Error(t, err)
	require.Equal(t, "UNAUTHENTICATED", domainCode(t, err))
}
