package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ErrTicketNotFound is returned when no ticket carries the requested id.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketPredicate selects tickets during List.
type TicketPredicate func(domain.Ticket) bool

// TicketStore owns ticket identity and timestamps. Implementations return
// copies; callers never hold references into the store.
type TicketStore interface {
	// Insert assigns id, createdAt and updatedAt and appends the ticket.
	Insert(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	FindByID(ctx context.Context, id string) (domain.Ticket, error)
	// Update merges patch into the stored ticket and refreshes updatedAt.
	Update(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, error)
	// List returns matching tickets in insertion order. A nil predicate matches all.
	List(ctx context.Context, pred TicketPredicate) ([]domain.Ticket, error)
}

func formatTicketID(counter int64, at time.Time) string {
	return fmt.Sprintf("ticket-%d-%d", counter, at.UnixMilli())
}

// storeTime normalizes timestamps to UTC millisecond precision, the
// resolution the API exposes.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// refreshedAt keeps updatedAt from ever preceding createdAt.
func refreshedAt(now, createdAt time.Time) time.Time {
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}
