package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/domain"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// Authorize is the authorization gate: pure, total, and free of hierarchy.
// A principal passes only when its role is a member of the required set; an
// admin does not implicitly satisfy an employee-only set. A role outside the
// closed enum is a data fault, not a deny.
func Authorize(principal *domain.Principal, required ...domain.Role) error {
	if principal == nil {
		return apperrors.NewUnauthenticated("no principal resolved")
	}
	if !principal.Role.Valid() {
		return apperrors.NewInternalError(nil)
	}
	for _, role := range required {
		if principal.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}

// RequireRole gates a route group on role membership. Must be mounted after
// AuthMiddleware so the principal is already resolved.
func RequireRole(required ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if err := Authorize(principal, required...); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAuthenticated only checks that a principal was resolved.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}
