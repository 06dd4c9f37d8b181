package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/domain"
)

// MemoryTicketStore keeps tickets in process memory, in insertion order.
// All access goes through mu, so a reader never observes a half-applied
// update.
type MemoryTicketStore struct {
	mu      sync.RWMutex
	clock   clock.Clock
	tickets []domain.Ticket
	counter int64
}

// NewMemoryTicketStore returns an empty store.
func NewMemoryTicketStore(clk clock.Clock) *MemoryTicketStore {
	if clk == nil {
		clk = clock.Real()
	}
	return &MemoryTicketStore{clock: clk}
}

// Seed appends preloaded tickets as-is, keeping their ids. Missing
// timestamps are filled from the clock. Seeding does not advance the id
// counter.
func (s *MemoryTicketStore) Seed(tickets ...domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ticket := range tickets {
		if ticket.CreatedAt.IsZero() {
			ticket.CreatedAt = storeTime(s.clock.Now())
		}
		ticket.UpdatedAt = refreshedAt(ticket.UpdatedAt, ticket.CreatedAt)
		s.tickets = append(s.tickets, ticket.Clone())
	}
}

func (s *MemoryTicketStore) Insert(_ context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	now := storeTime(s.clock.Now())
	ticket.ID = formatTicketID(s.counter, now)
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	stored := ticket.Clone()
	s.tickets = append(s.tickets, stored)
	return stored.Clone(), nil
}

func (s *MemoryTicketStore) FindByID(_ context.Context, id string) (domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Ticket{}, ErrTicketNotFound
	}
	return s.tickets[idx].Clone(), nil
}

func (s *MemoryTicketStore) Update(_ context.Context, id string, patch domain.TicketPatch) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Ticket{}, ErrTicketNotFound
	}

	updated := s.tickets[idx].Clone()
	patch.Apply(&updated)
	updated.UpdatedAt = refreshedAt(storeTime(s.clock.Now()), updated.CreatedAt)
	s.tickets[idx] = updated
	return updated.Clone(), nil
}

func (s *MemoryTicketStore) List(_ context.Context, pred TicketPredicate) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		if pred == nil || pred(ticket) {
			result = append(result, ticket.Clone())
		}
	}
	return result, nil
}

func (s *MemoryTicketStore) indexOf(id string) int {
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			return i
		}
	}
	return -1
}
