package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	queries *service.QueryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, queryService *service.QueryService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, queries: queryService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	page, err := h.queries.Query(c.UserContext(), parseTicketQuery(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, page)
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    req.Priority,
		UserID:      strings.TrimSpace(req.UserID),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.TicketResponse{Ticket: ticket})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.TicketResponse{Ticket: ticket})
}

// UpdateTicket PUT /api/tickets/:id. An empty body is an empty patch.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("Invalid request body", nil)
		}
	}

	ticket, err := h.tickets.UpdateTicket(c.UserContext(), c.Params("id"), req.ToPatch())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.TicketResponse{Ticket: ticket})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketQuery {
	query := service.TicketQuery{
		AssignedTo: queryValues(c, "assignedTo"),
		CreatedBy:  queryValues(c, "createdBy"),
		Search:     c.Query("search"),
		Page:       parseInt(c.Query("page"), service.DefaultPage),
		Limit:      parseInt(c.Query("limit"), service.DefaultLimit),
	}
	for _, status := range queryValues(c, "status") {
		query.Statuses = append(query.Statuses, domain.TicketStatus(status))
	}
	for _, priority := range queryValues(c, "priority") {
		query.Priorities = append(query.Priorities, domain.TicketPriority(priority))
	}
	return query
}

// queryValues collects key, key[] and comma separated forms of a
// multi-valued query parameter.
func queryValues(c *fiber.Ctx, key string) []string {
	var values []string
	args := c.Context().QueryArgs()
	for _, name := range []string{key, key + "[]"} {
		for _, raw := range args.PeekMulti(name) {
			for _, part := range strings.Split(string(raw), ",") {
				if part = strings.TrimSpace(part); part != "" {
					values = append(values, part)
				}
			}
		}
	}
	return values
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
