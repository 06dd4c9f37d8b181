package dto

import "github.com/spec-kit/support-desk/internal/domain"

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	UserID      string                `json:"userId"`
}

// UpdateTicketRequest is a partial ticket. Identity, timestamps, creator
// and aiResponse are not updatable and are ignored if sent.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Status      *domain.TicketStatus   `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
	AssignedTo  domain.AssigneeChange  `json:"assignedTo"`
}

// ToPatch converts the request into a domain patch.
func (r UpdateTicketRequest) ToPatch() domain.TicketPatch {
	return domain.TicketPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		AssignedTo:  r.AssignedTo,
	}
}

// TicketResponse wraps a single ticket.
type TicketResponse struct {
	Ticket *domain.Ticket `json:"ticket"`
}
