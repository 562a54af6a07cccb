package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// LeadsHandler manages employee lead endpoints.
type LeadsHandler struct {
	service *service.LeadService
}

// NewLeadsHandler constructs handler.
func NewLeadsHandler(leadService *service.LeadService) *LeadsHandler {
	return &LeadsHandler{service: leadService}
}

// Create handles POST /employee/leads.
func (h *LeadsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Phone == "" {
		return apperrors.NewValidationError("name and phone required", nil)
	}

	lead, err := h.service.Create(c.Context(), principal.ID, service.LeadCreateInput{
		Name:   req.Name,
		Phone:  req.Phone,
		Source: req.Source,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewLeadSummary(lead)})
}

// List handles GET /employee/leads.
func (h *LeadsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	filter := repository.LeadFilter{
		Limit:  parseQueryInt(c, "limit", 50),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.LeadStatus(statusStr)
		filter.Status = &status
	}

	leads, err := h.service.ListOwned(c.Context(), principal.ID, filter)
	if err != nil {
		return err
	}
	items := make([]dto.LeadSummary, 0, len(leads))
	for i := range leads {
		items = append(items, dto.NewLeadSummary(&leads[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
