package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// EmployeesHandler exposes admin-only account management endpoints.
type EmployeesHandler struct {
	employees *service.EmployeeService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employees *service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{employees: employees}
}

// Provision handles POST /admin/employees.
func (h *EmployeesHandler) Provision(c *fiber.Ctx) error {
	var req dto.ProvisionEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DisplayName == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return apperrors.NewValidationError("display_name, email, password, role required", nil)
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}

	principal, err := h.employees.Provision(c.Context(), service.ProvisionInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
		Role:        role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPrincipalView(principal)})
}

// List handles GET /admin/employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	filter := repository.PrincipalFilter{
		Limit:  parseQueryInt(c, "limit", 50),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role, err := domain.ParseRole(roleStr)
		if err != nil {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": roleStr})
		}
		filter.Role = &role
	}

	principals, err := h.employees.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.PrincipalView, 0, len(principals))
	for i := range principals {
		items = append(items, dto.NewPrincipalView(&principals[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ChangeRole handles PATCH /admin/employees/:id/role.
func (h *EmployeesHandler) ChangeRole(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return apperrors.NewValidationError("id required", nil)
	}

	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}

	principal, err := h.employees.ChangeRole(c.Context(), id, role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPrincipalView(principal)})
}

func parseQueryInt(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
