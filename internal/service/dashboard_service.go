package service

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// RecentTicketCount is how many tickets the dashboard lists.
const RecentTicketCount = 3

// DashboardStats summarizes the current store state.
type DashboardStats struct {
	TotalTickets      int             `json:"totalTickets"`
	OpenTickets       int             `json:"openTickets"`
	InProgressTickets int             `json:"inProgressTickets"`
	ResolvedTickets   int             `json:"resolvedTickets"`
	RecentTickets     []domain.Ticket `json:"recentTickets"`
}

// DashboardService computes dashboard counters.
type DashboardService struct {
	tickets repository.TicketStore
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketStore) *DashboardService {
	return &DashboardService{tickets: tickets}
}

// Stats counts tickets by status and lists the most recently inserted ones.
// Recent tickets follow insertion order, not createdAt; the list endpoint
// is the one that sorts by timestamp.
func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	all, err := s.tickets.List(ctx, nil)
	if err != nil {
		return DashboardStats{}, apperrors.NewInternalError(err)
	}

	stats := DashboardStats{
		TotalTickets:  len(all),
		RecentTickets: make([]domain.Ticket, 0, RecentTicketCount),
	}
	for _, ticket := range all {
		switch ticket.Status {
		case domain.TicketStatusOpen:
			stats.OpenTickets++
		case domain.TicketStatusInProgress:
			stats.InProgressTickets++
		case domain.TicketStatusResolved:
			stats.ResolvedTickets++
		}
	}
	for i := len(all) - 1; i >= 0 && len(stats.RecentTickets) < RecentTicketCount; i-- {
		stats.RecentTickets = append(stats.RecentTickets, all[i])
	}
	return stats, nil
}
