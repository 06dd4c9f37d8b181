package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

var fixtureStart = time.Date(2025, 9, 13, 12, 0, 0, 0, time.UTC)

var (
	demoUser = domain.User{
		ID:    "mock-user-id-175776732397",
		Name:  "Demo User",
		Email: "user@example.com",
		Role:  domain.UserRoleUser,
	}
	agentUser = domain.User{
		ID:    "mock-moderator-id-175776732399",
		Name:  "Support Agent",
		Email: "support@example.com",
		Role:  domain.UserRoleModerator,
	}
)

func newFixtureStore(tickets ...domain.Ticket) (*repository.MemoryTicketStore, *clock.FakeClock) {
	fake := clock.Fake(fixtureStart)
	store := repository.NewMemoryTicketStore(fake)
	store.Seed(tickets...)
	return store, fake
}

func fixtureTicket(id string, status domain.TicketStatus, priority domain.TicketPriority, creator domain.User, assignee *domain.User, title, description string, age time.Duration) domain.Ticket {
	ticket := domain.Ticket{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		CreatedBy:   creator.Ref(),
		CreatedAt:   fixtureStart.Add(age),
		UpdatedAt:   fixtureStart.Add(age),
	}
	if assignee != nil {
		ref := assignee.Ref()
		ticket.AssignedTo = &ref
	}
	return ticket
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func recordEvents(dispatcher events.Dispatcher) *eventRecorder {
	rec := &eventRecorder{}
	handler := func(_ context.Context, event events.Event) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.events = append(rec.events, event)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, handler)
	dispatcher.Subscribe(events.EventTicketUpdated, handler)
	return rec
}

func (r *eventRecorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func ticketIDs(tickets []domain.Ticket) []string {
	ids := make([]string, len(tickets))
	for i, ticket := range tickets {
		ids[i] = ticket.ID
	}
	return ids
}

func requireDomainError(t *testing.T, err error, code, message string) {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Code != code {
		t.Fatalf("code = %s, want %s", domainErr.Code, code)
	}
	if message != "" && domainErr.Message != message {
		t.Fatalf("message = %q, want %q", domainErr.Message, message)
	}
}
