package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates triage urgency tiers.
type TicketPriority string

const (
	TicketPriorityNormal   TicketPriority = "normal"
	TicketPriorityModerate TicketPriority = "moderate"
	TicketPriorityUrgent   TicketPriority = "priority"
)

// Weight orders priorities for sorting: priority > moderate > normal.
func (p TicketPriority) Weight() int {
	switch p {
	case TicketPriorityUrgent:
		return 3
	case TicketPriorityModerate:
		return 2
	default:
		return 1
	}
}

// Sentiment enumerates inferred customer mood.
type Sentiment string

const (
	SentimentPositive   Sentiment = "positive"
	SentimentNeutral    Sentiment = "neutral"
	SentimentFrustrated Sentiment = "frustrated"
	SentimentAngry      Sentiment = "angry"
)

// TicketSource identifies the intake channel.
type TicketSource string

const (
	SourceChat  TicketSource = "chat"
	SourceEmail TicketSource = "email"
	SourceCall  TicketSource = "call"
	SourceAPI   TicketSource = "api"
)

// WasteCategory is a diagnostic bucket used only for analytics.
type WasteCategory string

const (
	WasteProductDefect WasteCategory = "product_defect"
	WasteShippingError WasteCategory = "shipping_error"
	WasteUserConfusion WasteCategory = "user_confusion"
	WasteProcessIssue  WasteCategory = "process_issue"
	WasteNone          WasteCategory = "none"
)

// CustomerInfo is a denormalized snapshot of the requester, not a live
// foreign key.
type CustomerInfo struct {
	Name  string
	Email string
	Phone *string
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              string
	Title           string
	Description     string
	Category        string
	Priority        TicketPriority
	Sentiment       Sentiment
	WasteCategory   WasteCategory
	Status          TicketStatus
	Source          TicketSource
	AssignedTo      *string
	Customer        CustomerInfo
	CarbonFootprint *float64
	VoiceRecording  *string
	AutoResolved    bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive reports whether the ticket still needs handling.
func (t *Ticket) IsActive() bool {
	return t.Status == TicketStatusOpen || t.Status == TicketStatusInProgress
}
