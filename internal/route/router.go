// Package route maps a classification to a handling queue. The mapping is
// total and side-effect free: priority goes to the call team, moderate to
// the email team, and everything else to the automated assistant.
package route

import "github.com/logic-legends/triage-service/internal/domain"

// Assignment is the routing outcome for a freshly classified ticket.
type Assignment struct {
	Team          domain.TeamKind
	InitialStatus domain.TicketStatus
}

// HumanAssigned reports whether the ticket was routed to a human queue.
func (a Assignment) HumanAssigned() bool {
	return a.Team != domain.TeamAssistant
}

// Route decides the handling queue and initial status for a classification.
// The ticket source does not change the initial routing; call-sourced
// tickets that reach priority or angry classification are additionally
// surfaced by the escalation view.
func Route(c domain.Classification, source domain.TicketSource) Assignment {
	switch c.Priority {
	case domain.TicketPriorityUrgent:
		return Assignment{Team: domain.TeamCall, InitialStatus: domain.TicketStatusOpen}
	case domain.TicketPriorityModerate:
		return Assignment{Team: domain.TeamEmail, InitialStatus: domain.TicketStatusOpen}
	default:
		return Assignment{Team: domain.TeamAssistant, InitialStatus: domain.TicketStatusOpen}
	}
}
