package domain

import (
	"encoding/json"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is one of the four known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// UserRef is a copy of a user's identity taken when a ticket is created or
// assigned. It is never refreshed from the user directory.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	CreatedBy   UserRef        `json:"createdBy"`
	AssignedTo  *UserRef       `json:"assignedTo"`
	AIResponse  string         `json:"aiResponse"`
}

// Clone returns a copy that shares no pointers with t.
func (t Ticket) Clone() Ticket {
	if t.AssignedTo != nil {
		assignee := *t.AssignedTo
		t.AssignedTo = &assignee
	}
	return t
}

// TicketPatch lists the fields an update may change. Nil pointers are left
// untouched.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *TicketStatus
	Priority    *TicketPriority
	AssignedTo  AssigneeChange
}

// AssigneeChange distinguishes "not supplied" from an explicit null. A bare
// user id decodes to a UserRef carrying only the ID; see NeedsLookup.
type AssigneeChange struct {
	Set   bool
	Value *UserRef
}

// NeedsLookup reports whether the snapshot still has to be resolved from
// the user directory.
func (a AssigneeChange) NeedsLookup() bool {
	return a.Set && a.Value != nil && a.Value.Name == "" && a.Value.Email == ""
}

// UnmarshalJSON records that the field was present, even when it is null.
func (a *AssigneeChange) UnmarshalJSON(data []byte) error {
	a.Set = true
	if string(data) == "null" {
		a.Value = nil
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		if id == "" {
			a.Value = nil
			return nil
		}
		a.Value = &UserRef{ID: id}
		return nil
	}
	var ref UserRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	a.Value = &ref
	return nil
}

// Apply shallow-merges the patch into t. Timestamps are the caller's job.
func (p TicketPatch) Apply(t *Ticket) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo.Set {
		if p.AssignedTo.Value == nil {
			t.AssignedTo = nil
		} else {
			assignee := *p.AssignedTo.Value
			t.AssignedTo = &assignee
		}
	}
}
