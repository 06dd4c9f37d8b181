package domain

import (
	"encoding/json"
	"testing"
)

func TestTicketPatchApply(t *testing.T) {
	ticket := Ticket{
		ID:         "ticket-1-1",
		Title:      "old",
		Status:     TicketStatusOpen,
		Priority:   TicketPriorityLow,
		AssignedTo: &UserRef{ID: "u1"},
	}

	title := "new"
	status := TicketStatusResolved
	TicketPatch{Title: &title, Status: &status}.Apply(&ticket)

	if ticket.Title != "new" || ticket.Status != TicketStatusResolved {
		t.Fatalf("patch not applied: %+v", ticket)
	}
	if ticket.Priority != TicketPriorityLow || ticket.AssignedTo == nil {
		t.Fatalf("untouched fields changed: %+v", ticket)
	}

	TicketPatch{AssignedTo: AssigneeChange{Set: true}}.Apply(&ticket)
	if ticket.AssignedTo != nil {
		t.Fatalf("explicit null should clear assignee")
	}
}

func TestAssigneeChangeJSON(t *testing.T) {
	var body struct {
		AssignedTo AssigneeChange `json:"assignedTo"`
	}

	if err := json.Unmarshal([]byte(`{}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.AssignedTo.Set {
		t.Fatalf("absent field must not be marked set")
	}

	if err := json.Unmarshal([]byte(`{"assignedTo":null}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.AssignedTo.Set || body.AssignedTo.Value != nil {
		t.Fatalf("null must be set with nil value: %+v", body.AssignedTo)
	}

	if err := json.Unmarshal([]byte(`{"assignedTo":{"id":"u2","name":"Sam","email":"sam@example.com"}}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.AssignedTo.Value == nil || body.AssignedTo.Value.ID != "u2" {
		t.Fatalf("snapshot not decoded: %+v", body.AssignedTo)
	}
	if body.AssignedTo.NeedsLookup() {
		t.Fatalf("full snapshot should not need a lookup")
	}

	if err := json.Unmarshal([]byte(`{"assignedTo":"u3"}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.AssignedTo.NeedsLookup() || body.AssignedTo.Value.ID != "u3" {
		t.Fatalf("bare id should decode to a lookup: %+v", body.AssignedTo)
	}

	if err := json.Unmarshal([]byte(`{"assignedTo":42}`), &body); err == nil {
		t.Fatalf("expected error for numeric assignee")
	}
}

func TestEnumsValid(t *testing.T) {
	if !TicketStatusInProgress.Valid() || TicketStatus("pending").Valid() {
		t.Fatalf("status validation wrong")
	}
	if !TicketPriorityUrgent.Valid() || TicketPriority("critical").Valid() {
		t.Fatalf("priority validation wrong")
	}
}

func TestCloneDetachesAssignee(t *testing.T) {
	original := Ticket{AssignedTo: &UserRef{ID: "u1"}}
	clone := original.Clone()
	clone.AssignedTo.ID = "u2"
	if original.AssignedTo.ID != "u1" {
		t.Fatalf("clone shares assignee pointer")
	}
}
