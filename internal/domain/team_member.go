package domain

import "time"

// TeamKind identifies a handling queue for routed tickets.
type TeamKind string

const (
	TeamAssistant TeamKind = "assistant"
	TeamEmail     TeamKind = "email_team"
	TeamCall      TeamKind = "call_team"
)

// MemberRole enumerates human handler roles.
type MemberRole string

const (
	RoleCaller    MemberRole = "caller"
	RoleEmailTeam MemberRole = "email_team"
)

// PresenceStatus is a member's live availability.
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceBusy    PresenceStatus = "busy"
	PresenceAway    PresenceStatus = "away"
	PresenceOffline PresenceStatus = "offline"
)

// TeamMember models a human handler eligible for ticket assignment.
// ActiveTickets and ResolvedToday are derivative counters adjusted only
// when a ticket referencing the member commits a status transition.
type TeamMember struct {
	ID              string
	Name            string
	Email           string
	Role            MemberRole
	Status          PresenceStatus
	ActiveTickets   int
	ResolvedToday   int
	AvgResponseMins float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
