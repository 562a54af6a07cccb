package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("ADMIN")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, role)

	role, err = ParseRole("EMPLOYEE")
	require.NoError(t, err)
	require.Equal(t, RoleEmployee, role)

	for _, bad := range []string{"", "admin", "SUPERUSER", "Admin "} {
		_, err := ParseRole(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestSnapshotNeverCarriesHash(t *testing.T) {
	principal := &Principal{
		ID:           "p1",
		DisplayName:  "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$secret",
		Role:         RoleEmployee,
	}

	payload, err := json.Marshal(principal.Snapshot())
	require.NoError(t, err)
	require.False(t, strings.Contains(string(payload), "secret"))
	require.False(t, strings.Contains(string(payload), "hash"))
}
