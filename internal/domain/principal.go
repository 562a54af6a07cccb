package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of permission classes. Each role gates an entire
// route subtree; there is no hierarchy between them.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

// ParseRole maps a stored role value onto the closed enum.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEmployee:
		return RoleEmployee, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// Valid reports whether the role is a member of the closed enum.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Principal is an account that can authenticate against the service.
type Principal struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Snapshot is the redacted principal view handed to clients. It never
// carries the password hash.
type Snapshot struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// Snapshot returns the redacted view of the principal.
func (p *Principal) Snapshot() Snapshot {
	return Snapshot{ID: p.ID, DisplayName: p.DisplayName, Role: p.Role}
}
