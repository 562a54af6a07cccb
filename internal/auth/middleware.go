package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware is the token inspector: it validates bearer tokens and
// resolves them to a live principal before any authorization decision runs.
type AuthMiddleware struct {
	tokens     *TokenManager
	principals repository.PrincipalRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, principals repository.PrincipalRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, principals: principals}
}

// Handle enforces authentication for protected routes. Missing material,
// malformed bearer syntax, and every token verification failure collapse to
// the same UNAUTHENTICATED outcome.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	subjectID, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	// Re-fetch on every request so role changes apply immediately and a
	// deleted account stops authenticating without a revocation list.
	principal, err := m.principals.GetByID(c.Context(), subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated("invalid token")
		}
		return apperrors.MapError(err)
	}
	if !principal.Active {
		return apperrors.NewUnauthenticated("invalid token")
	}
	if !principal.Role.Valid() {
		return apperrors.NewInternalError(nil)
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
