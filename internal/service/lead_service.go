package service

import (
	"context"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// LeadService handles lead records. Leads exist here as protected resources
// behind the employee route subtree; there is no workflow logic.
type LeadService struct {
	leads repository.LeadRepository
}

// NewLeadService constructs the service.
func NewLeadService(leads repository.LeadRepository) *LeadService {
	return &LeadService{leads: leads}
}

// LeadCreateInput describes a new lead.
type LeadCreateInput struct {
	Name   string
	Phone  string
	Source string
}

// Create stores a lead owned by the acting principal.
func (s *LeadService) Create(ctx context.Context, ownerID string, input LeadCreateInput) (*domain.Lead, error) {
	lead := &domain.Lead{
		Name:    input.Name,
		Phone:   input.Phone,
		Source:  input.Source,
		Status:  domain.LeadStatusNew,
		OwnerID: ownerID,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, apperrors.MapError(err)
	}
	return lead, nil
}

// ListOwned returns the acting principal's leads.
func (s *LeadService) ListOwned(ctx context.Context, ownerID string, filter repository.LeadFilter) ([]domain.Lead, error) {
	leads, err := s.leads.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return leads, nil
}
