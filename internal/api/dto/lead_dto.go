package dto

import (
	"time"

	"github.com/spec-kit/crm-service/internal/domain"
)

// CreateLeadRequest payload for new leads.
type CreateLeadRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

// LeadSummary is the lead representation returned to clients.
type LeadSummary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Source    string            `json:"source"`
	Status    domain.LeadStatus `json:"status"`
	OwnerID   string            `json:"owner_id"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewLeadSummary converts a domain lead.
func NewLeadSummary(lead *domain.Lead) LeadSummary {
	return LeadSummary{
		ID:        lead.ID,
		Name:      lead.Name,
		Phone:     lead.Phone,
		Source:    lead.Source,
		Status:    lead.Status,
		OwnerID:   lead.OwnerID,
		CreatedAt: lead.CreatedAt,
	}
}
