package domain

import "time"

// LeadStatus tracks the coarse lifecycle of a lead record.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusClosed    LeadStatus = "CLOSED"
)

// Lead is a thin CRM record owned by an employee. The auth core only cares
// that leads live behind the employee route subtree; the record itself is
// plain data.
type Lead struct {
	ID        string
	Name      string
	Phone     string
	Source    string
	Status    LeadStatus
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
