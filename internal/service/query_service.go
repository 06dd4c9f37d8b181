package service

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25

	// UnassignedToken in an assignedTo filter matches tickets with no assignee.
	UnassignedToken = "unassigned"
)

// TicketQuery is the flat parameter set accepted by the list endpoint.
// Values within one field are OR-ed; fields are AND-ed.
type TicketQuery struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	AssignedTo []string
	CreatedBy  []string
	Search     string
	Page       int
	Limit      int
}

// Normalize fills in defaults for missing or non-positive page and limit.
func (q TicketQuery) Normalize() TicketQuery {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	return q
}

// Pagination describes the slice returned by a query.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// TicketPage is one page of query results.
type TicketPage struct {
	Tickets    []domain.Ticket `json:"tickets"`
	Pagination Pagination      `json:"pagination"`
}

// QueryService filters, sorts and paginates tickets.
type QueryService struct {
	tickets repository.TicketStore
}

// NewQueryService constructs the service.
func NewQueryService(tickets repository.TicketStore) *QueryService {
	return &QueryService{tickets: tickets}
}

// Query returns the requested page. Pages past the end come back empty
// rather than as an error.
func (s *QueryService) Query(ctx context.Context, query TicketQuery) (TicketPage, error) {
	query = query.Normalize()

	matches, err := s.tickets.List(ctx, allOf(filterStages(query)...))
	if err != nil {
		return TicketPage{}, apperrors.NewInternalError(err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	// page and limit may be anywhere up to MaxInt; no sum or product below
	// can exceed total.
	total := len(matches)
	start := total
	if query.Page-1 <= total/query.Limit {
		start = min((query.Page-1)*query.Limit, total)
	}
	end := start + min(query.Limit, total-start)

	page := make([]domain.Ticket, end-start)
	copy(page, matches[start:end])

	totalPages := total / query.Limit
	if total%query.Limit != 0 {
		totalPages++
	}

	return TicketPage{
		Tickets: page,
		Pagination: Pagination{
			Page:       query.Page,
			Limit:      query.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    end < total,
			HasPrev:    query.Page > 1,
		},
	}, nil
}

// filterStages returns the predicates for the supplied fields in the fixed
// order createdBy, assignedTo, status, priority, search.
func filterStages(query TicketQuery) []repository.TicketPredicate {
	var stages []repository.TicketPredicate

	if len(query.CreatedBy) > 0 {
		creators := toSet(query.CreatedBy)
		stages = append(stages, func(t domain.Ticket) bool {
			_, ok := creators[t.CreatedBy.ID]
			return ok
		})
	}
	if len(query.AssignedTo) > 0 {
		assignees := toSet(query.AssignedTo)
		_, wantUnassigned := assignees[UnassignedToken]
		stages = append(stages, func(t domain.Ticket) bool {
			if t.AssignedTo == nil {
				return wantUnassigned
			}
			_, ok := assignees[t.AssignedTo.ID]
			return ok
		})
	}
	if len(query.Statuses) > 0 {
		statuses := toSet(query.Statuses)
		stages = append(stages, func(t domain.Ticket) bool {
			_, ok := statuses[t.Status]
			return ok
		})
	}
	if len(query.Priorities) > 0 {
		priorities := toSet(query.Priorities)
		stages = append(stages, func(t domain.Ticket) bool {
			_, ok := priorities[t.Priority]
			return ok
		})
	}
	if query.Search != "" {
		needle := strings.ToLower(query.Search)
		stages = append(stages, func(t domain.Ticket) bool {
			return strings.Contains(strings.ToLower(t.Title), needle) ||
				strings.Contains(strings.ToLower(t.Description), needle)
		})
	}
	return stages
}

func allOf(stages ...repository.TicketPredicate) repository.TicketPredicate {
	if len(stages) == 0 {
		return nil
	}
	return func(t domain.Ticket) bool {
		for _, stage := range stages {
			if !stage(t) {
				return false
			}
		}
		return true
	}
}

func toSet[T comparable](values []T) map[T]struct{} {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
