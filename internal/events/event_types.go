package events

import (
	"time"

	"github.com/logic-legends/triage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketReclassified  EventType = "ticket_reclassified"
)

// Event represents a committed ticket-state change. Events are published
// only after the triggering transition has persisted, so downstream
// counter updates never run ahead of their ticket.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Priority   domain.TicketPriority `json:"priority"`
	Sentiment  domain.Sentiment      `json:"sentiment"`
	Category   string                `json:"category"`
	Source     domain.TicketSource   `json:"source"`
	AssignedTo *string               `json:"assigned_to,omitempty"`
	Title      string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	AssignedTo *string             `json:"assigned_to,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssignee *string `json:"old_assignee,omitempty"`
	NewAssignee *string `json:"new_assignee,omitempty"`
}

// TicketReclassifiedPayload payload.
type TicketReclassifiedPayload struct {
	Priority  domain.TicketPriority `json:"priority"`
	Sentiment domain.Sentiment      `json:"sentiment"`
	Category  string                `json:"category"`
}
