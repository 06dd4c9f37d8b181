package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spec-kit/support-desk/internal/domain"
)

func plainHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func TestLoadDefaultSeed(t *testing.T) {
	data, err := Load("")
	if err != nil {
		t.Fatalf("load default seed: %v", err)
	}

	users, err := data.DomainUsers(plainHash)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	found := false
	for _, user := range users {
		if user.ID == "mock-user-id-175776732397" {
			found = true
			if user.PasswordHash != "hashed:password" {
				t.Fatalf("password not hashed through hook: %q", user.PasswordHash)
			}
		}
	}
	if !found {
		t.Fatalf("demo user missing from default seed")
	}

	tickets := data.DomainTickets()
	if len(tickets) != 1 {
		t.Fatalf("expected one seed ticket, got %d", len(tickets))
	}
	welcome := tickets[0]
	if welcome.ID != "welcome-ticket-001" || welcome.Status != domain.TicketStatusOpen {
		t.Fatalf("unexpected welcome ticket: %+v", welcome)
	}
	if welcome.CreatedBy.ID != "mock-user-id-175776732397" || welcome.CreatedBy.Email == "" {
		t.Fatalf("createdBy snapshot not resolved: %+v", welcome.CreatedBy)
	}
}

func TestParseRejectsUnknownCreator(t *testing.T) {
	content := []byte(`
users:
  - id: u1
    email: a@example.com
tickets:
  - id: t1
    title: hi
    createdBy: ghost
`)
	_, err := Parse(content, "inline")
	if err == nil || !strings.Contains(err.Error(), "createdBy") {
		t.Fatalf("expected createdBy validation error, got %v", err)
	}
}

func TestParseRejectsBadStatus(t *testing.T) {
	content := []byte(`
users:
  - id: u1
    email: a@example.com
tickets:
  - id: t1
    createdBy: u1
    status: pending
`)
	if _, err := Parse(content, "inline"); err == nil {
		t.Fatalf("expected status validation error")
	}
}

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `
users:
  - id: u1
    name: One
    email: one@example.com
  - id: u2
    name: Two
    email: two@example.com
tickets:
  - id: t1
    title: Printer
    createdBy: u1
    assignedTo: u2
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	data, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	users, _ := data.DomainUsers(plainHash)
	if users[0].Role != domain.UserRoleUser || users[0].PasswordHash != "" {
		t.Fatalf("unexpected user defaults: %+v", users[0])
	}
	ticket := data.DomainTickets()[0]
	if ticket.Status != domain.TicketStatusOpen || ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("defaults not applied: %+v", ticket)
	}
	if ticket.AssignedTo == nil || ticket.AssignedTo.Name != "Two" {
		t.Fatalf("assignee not resolved: %+v", ticket.AssignedTo)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
