package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketStore
	users      repository.UserRepository
	responder  ResponseSynthesizer
	dispatcher events.Dispatcher
	clock      clock.Clock
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketStore repository.TicketStore
	UserRepo    repository.UserRepository
	Responder   ResponseSynthesizer
	Dispatcher  events.Dispatcher
	Clock       clock.Clock
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	UserID      string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &TicketService{
		tickets:    deps.TicketStore,
		users:      deps.UserRepo,
		responder:  deps.Responder,
		dispatcher: deps.Dispatcher,
		clock:      clk,
	}
}

// CreateTicket resolves the creator, synthesizes the advisory response and
// stores a new open ticket. Nothing is stored when the user is unknown.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, apperrors.NewValidationError("User ID is required", nil)
	}
	// An unknown user is reported ahead of any problem with the ticket fields.
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, userLookupError(err, input.UserID)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("Title is required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("Invalid priority", map[string]any{"priority": priority})
	}

	// From here on the request is accepted and runs to completion.
	ctx = context.WithoutCancel(ctx)

	aiResponse, err := s.responder.Synthesize(ctx, input.Title, input.Description)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	stored, err := s.tickets.Insert(ctx, domain.Ticket{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		CreatedBy:   user.Ref(),
		AIResponse:  aiResponse,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: stored.ID,
		ActorID:  user.ID,
		Payload:  events.TicketCreatedPayload{Ticket: stored},
	})
	return &stored, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, ticketLookupError(err, id)
	}
	return &ticket, nil
}

// UpdateTicket merges patch into the ticket and refreshes updatedAt. An
// assignee given by id only is resolved to a full snapshot first.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperrors.NewValidationError("Title cannot be empty", nil)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.NewValidationError("Invalid status", map[string]any{"status": *patch.Status})
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, apperrors.NewValidationError("Invalid priority", map[string]any{"priority": *patch.Priority})
	}
	if patch.AssignedTo.NeedsLookup() {
		assignee, err := s.users.GetByID(ctx, patch.AssignedTo.Value.ID)
		if err != nil {
			return nil, userLookupError(err, patch.AssignedTo.Value.ID)
		}
		ref := assignee.Ref()
		patch.AssignedTo.Value = &ref
	}

	updated, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		return nil, ticketLookupError(err, id)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: updated.ID,
		Payload:  events.TicketUpdatedPayload{Ticket: updated, ChangedFields: changedFields(patch)},
	})
	return &updated, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func changedFields(patch domain.TicketPatch) []string {
	fields := []string{}
	if patch.Title != nil {
		fields = append(fields, "title")
	}
	if patch.Description != nil {
		fields = append(fields, "description")
	}
	if patch.Status != nil {
		fields = append(fields, "status")
	}
	if patch.Priority != nil {
		fields = append(fields, "priority")
	}
	if patch.AssignedTo.Set {
		fields = append(fields, "assignedTo")
	}
	return fields
}

func ticketLookupError(err error, id string) error {
	if errors.Is(err, repository.ErrTicketNotFound) {
		return apperrors.NewNotFound("Ticket", map[string]any{"ticket_id": id})
	}
	return apperrors.NewInternalError(err)
}

func userLookupError(err error, id string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperrors.NewNotFound("User", map[string]any{"user_id": id})
	}
	return apperrors.NewInternalError(err)
}
