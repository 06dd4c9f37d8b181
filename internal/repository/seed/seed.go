// Package seed loads the users and starter tickets the service boots with.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/support-desk/internal/domain"
)

//go:embed default.yaml
var defaultSeed []byte

// Data is the on-disk seed layout.
type Data struct {
	Users   []UserSeed   `yaml:"users"`
	Tickets []TicketSeed `yaml:"tickets"`
}

// UserSeed describes one directory entry. Password is plaintext and is
// hashed when converted.
type UserSeed struct {
	ID       string          `yaml:"id"`
	Name     string          `yaml:"name"`
	Email    string          `yaml:"email"`
	Role     domain.UserRole `yaml:"role"`
	Password string          `yaml:"password"`
}

// TicketSeed describes a preloaded ticket. CreatedBy and AssignedTo are
// user ids resolved against the seeded users.
type TicketSeed struct {
	ID          string                `yaml:"id"`
	Title       string                `yaml:"title"`
	Description string                `yaml:"description"`
	Status      domain.TicketStatus   `yaml:"status"`
	Priority    domain.TicketPriority `yaml:"priority"`
	CreatedBy   string                `yaml:"createdBy"`
	AssignedTo  string                `yaml:"assignedTo"`
	AIResponse  string                `yaml:"aiResponse"`
	CreatedAt   time.Time             `yaml:"createdAt"`
}

// Load reads the seed file at path, or the embedded default when path is empty.
func Load(path string) (*Data, error) {
	content := defaultSeed
	source := "embedded seed"
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
		content = raw
		source = path
	}
	return Parse(content, source)
}

// Parse decodes YAML seed content and validates references.
func Parse(content []byte, source string) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", source, err)
	}
	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed %s: %w", source, err)
	}
	return &data, nil
}

func (d *Data) validate() error {
	ids := make(map[string]struct{}, len(d.Users))
	for _, user := range d.Users {
		if user.ID == "" || user.Email == "" {
			return fmt.Errorf("user entries need id and email")
		}
		if _, dup := ids[user.ID]; dup {
			return fmt.Errorf("duplicate user id %q", user.ID)
		}
		ids[user.ID] = struct{}{}
	}
	ticketIDs := make(map[string]struct{}, len(d.Tickets))
	for _, ticket := range d.Tickets {
		if ticket.ID == "" {
			return fmt.Errorf("ticket entries need an id")
		}
		if _, dup := ticketIDs[ticket.ID]; dup {
			return fmt.Errorf("duplicate ticket id %q", ticket.ID)
		}
		ticketIDs[ticket.ID] = struct{}{}
		if ticket.Status != "" && !ticket.Status.Valid() {
			return fmt.Errorf("ticket %s: unknown status %q", ticket.ID, ticket.Status)
		}
		if ticket.Priority != "" && !ticket.Priority.Valid() {
			return fmt.Errorf("ticket %s: unknown priority %q", ticket.ID, ticket.Priority)
		}
		if _, ok := ids[ticket.CreatedBy]; !ok {
			return fmt.Errorf("ticket %s: createdBy %q is not a seeded user", ticket.ID, ticket.CreatedBy)
		}
		if ticket.AssignedTo != "" {
			if _, ok := ids[ticket.AssignedTo]; !ok {
				return fmt.Errorf("ticket %s: assignedTo %q is not a seeded user", ticket.ID, ticket.AssignedTo)
			}
		}
	}
	return nil
}

// DomainUsers converts the seeded users, hashing passwords with hash.
func (d *Data) DomainUsers(hash func(string) (string, error)) ([]domain.User, error) {
	users := make([]domain.User, 0, len(d.Users))
	for _, entry := range d.Users {
		role := entry.Role
		if role == "" {
			role = domain.UserRoleUser
		}
		user := domain.User{ID: entry.ID, Name: entry.Name, Email: entry.Email, Role: role}
		if entry.Password != "" {
			hashed, err := hash(entry.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password for %s: %w", entry.ID, err)
			}
			user.PasswordHash = hashed
		}
		users = append(users, user)
	}
	return users, nil
}

// DomainTickets converts the seeded tickets, embedding user snapshots.
// Zero CreatedAt values are left for the store to fill.
func (d *Data) DomainTickets() []domain.Ticket {
	refs := make(map[string]domain.UserRef, len(d.Users))
	for _, entry := range d.Users {
		refs[entry.ID] = domain.UserRef{ID: entry.ID, Name: entry.Name, Email: entry.Email}
	}
	tickets := make([]domain.Ticket, 0, len(d.Tickets))
	for _, entry := range d.Tickets {
		ticket := domain.Ticket{
			ID:          entry.ID,
			Title:       entry.Title,
			Description: entry.Description,
			Status:      entry.Status,
			Priority:    entry.Priority,
			CreatedBy:   refs[entry.CreatedBy],
			AIResponse:  entry.AIResponse,
			CreatedAt:   entry.CreatedAt,
			UpdatedAt:   entry.CreatedAt,
		}
		if ticket.Status == "" {
			ticket.Status = domain.TicketStatusOpen
		}
		if ticket.Priority == "" {
			ticket.Priority = domain.TicketPriorityMedium
		}
		if entry.AssignedTo != "" {
			assignee := refs[entry.AssignedTo]
			ticket.AssignedTo = &assignee
		}
		tickets = append(tickets, ticket)
	}
	return tickets
}
