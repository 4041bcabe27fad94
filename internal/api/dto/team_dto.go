package dto

import (
	"time"

	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/escalation"
	"github.com/logic-legends/triage-service/internal/service"
)

// AddMemberRequest payload.
type AddMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SetPresenceRequest payload.
type SetPresenceRequest struct {
	Status string `json:"status"`
}

// TeamMemberResponse is the wire form of a roster member.
type TeamMemberResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	Status          string  `json:"status"`
	ActiveTickets   int     `json:"active_tickets"`
	ResolvedToday   int     `json:"resolved_today"`
	AvgResponseMins float64 `json:"avg_response_mins"`
}

// FromMember converts a domain member.
func FromMember(m *domain.TeamMember) TeamMemberResponse {
	return TeamMemberResponse{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Role:            string(m.Role),
		Status:          string(m.Status),
		ActiveTickets:   m.ActiveTickets,
		ResolvedToday:   m.ResolvedToday,
		AvgResponseMins: m.AvgResponseMins,
	}
}

// TeamStatsResponse summarizes the roster.
type TeamStatsResponse struct {
	TotalMembers       int     `json:"total_members"`
	OnlineMembers      int     `json:"online_members"`
	TotalActiveTickets int     `json:"total_active_tickets"`
	AvgResponseMins    float64 `json:"avg_response_mins"`
}

// FromTeamStats converts service stats.
func FromTeamStats(s service.TeamStats) TeamStatsResponse {
	return TeamStatsResponse{
		TotalMembers:       s.TotalMembers,
		OnlineMembers:      s.OnlineMembers,
		TotalActiveTickets: s.TotalActiveTickets,
		AvgResponseMins:    s.AvgResponseMins,
	}
}

// EscalationMetricsResponse is the derived escalation rollup.
type EscalationMetricsResponse struct {
	ActiveEscalations int       `json:"active_escalations"`
	AngryCustomers    int       `json:"angry_customers"`
	AvgAgeHours       float64   `json:"avg_age_hours"`
	Degraded          bool      `json:"degraded"`
	ComputedAt        time.Time `json:"computed_at"`
}

// EscalatedTicketResponse pairs a ticket with its escalation reason.
type EscalatedTicketResponse struct {
	TicketResponse
	Reason string `json:"reason"`
}

// FromEscalated converts the escalation set.
func FromEscalated(tickets []domain.Ticket) []EscalatedTicketResponse {
	out := make([]EscalatedTicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, EscalatedTicketResponse{
			TicketResponse: FromTicket(&tickets[i]),
			Reason:         escalation.Reason(tickets[i]),
		})
	}
	return out
}

// AssignEscalationRequest payload.
type AssignEscalationRequest struct {
	MemberID string `json:"member_id"`
}

// AlertResponse is the wire form of a proactive alert.
type AlertResponse struct {
	ID               string     `json:"id"`
	Type             string     `json:"type"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Severity         string     `json:"severity"`
	AffectedUsers    int        `json:"affected_users"`
	Action           string     `json:"action"`
	PreventedTickets int        `json:"prevented_tickets"`
	CreatedAt        time.Time  `json:"created_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
}

// FromAlerts converts domain alerts.
func FromAlerts(alerts []domain.ProactiveAlert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, AlertResponse{
			ID:               alert.ID,
			Type:             string(alert.Type),
			Title:            alert.Title,
			Description:      alert.Description,
			Severity:         string(alert.Severity),
			AffectedUsers:    alert.AffectedUsers,
			Action:           alert.Action,
			PreventedTickets: alert.PreventedTickets,
			CreatedAt:        alert.CreatedAt,
			ResolvedAt:       alert.ResolvedAt,
		})
	}
	return out
}
