package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/observability"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// AuthHandler exposes login and token verification endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	metrics *observability.Metrics
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, metrics *observability.Metrics) *AuthHandler {
	return &AuthHandler{auth: authService, metrics: metrics}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	principal, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordAuthOutcome("login", "failure")
		return err
	}
	h.metrics.RecordAuthOutcome("login", "success")

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewPrincipalView(principal),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Verify handles GET /auth/verify. The middleware has already resolved the
// principal; this endpoint just reflects the current account state back.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		h.metrics.RecordAuthOutcome("verify", "failure")
		return apperrors.NewUnauthenticated("authentication required")
	}
	h.metrics.RecordAuthOutcome("verify", "success")

	return c.JSON(fiber.Map{
		"data": fiber.Map{"user": dto.NewPrincipalView(principal)},
	})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}

	if err := h.auth.ChangePassword(c.Context(), principal.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
