package dto

import (
	"time"

	"github.com/logic-legends/triage-service/internal/domain"
)

// CreateTicketRequest payload for every intake source.
type CreateTicketRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Category       string  `json:"category,omitempty"`
	Source         string  `json:"source"`
	CustomerName   string  `json:"customer_name"`
	CustomerEmail  string  `json:"customer_email"`
	CustomerPhone  *string `json:"customer_phone,omitempty"`
	VoiceRecording *string `json:"voice_recording,omitempty"`
}

// UpdateTicketRequest carries a partial mutation.
type UpdateTicketRequest struct {
	Status        *string `json:"status,omitempty"`
	Priority      *string `json:"priority,omitempty"`
	Sentiment     *string `json:"sentiment,omitempty"`
	Category      *string `json:"category,omitempty"`
	WasteCategory *string `json:"waste_category,omitempty"`
	AssignedTo    *string `json:"assigned_to,omitempty"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Priority        string    `json:"priority"`
	Sentiment       string    `json:"sentiment"`
	WasteCategory   string    `json:"waste_category"`
	Status          string    `json:"status"`
	Source          string    `json:"source"`
	AssignedTo      *string   `json:"assigned_to,omitempty"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	CustomerPhone   *string   `json:"customer_phone,omitempty"`
	CarbonFootprint *float64  `json:"carbon_footprint,omitempty"`
	VoiceRecording  *string   `json:"voice_recording,omitempty"`
	AutoResolved    bool      `json:"auto_resolved"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FromTicket converts the domain ticket.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Category:        t.Category,
		Priority:        string(t.Priority),
		Sentiment:       string(t.Sentiment),
		WasteCategory:   string(t.WasteCategory),
		Status:          string(t.Status),
		Source:          string(t.Source),
		AssignedTo:      t.AssignedTo,
		CustomerName:    t.Customer.Name,
		CustomerEmail:   t.Customer.Email,
		CustomerPhone:   t.Customer.Phone,
		CarbonFootprint: t.CarbonFootprint,
		VoiceRecording:  t.VoiceRecording,
		AutoResolved:    t.AutoResolved,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// FromTickets converts a slice.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, FromTicket(&tickets[i]))
	}
	return out
}

// FeedSnapshotResponse is one feed tick on the wire. Consumers replace
// their prior view with Tickets on every message.
type FeedSnapshotResponse struct {
	Seq      uint64           `json:"seq"`
	Degraded bool             `json:"degraded"`
	Tickets  []TicketResponse `json:"tickets"`
}
