package escalation

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/route"
	"github.com/logic-legends/triage-service/internal/store"
)

func escalationFixture(id string, status domain.TicketStatus, priority domain.TicketPriority, sentiment domain.Sentiment, age time.Duration, now time.Time) domain.Ticket {
	return domain.Ticket{
		ID:        id,
		Title:     "t-" + id,
		Status:    status,
		Priority:  priority,
		Sentiment: sentiment,
		CreatedAt: now.Add(-age),
	}
}

func TestIsEscalated(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name   string
		ticket domain.Ticket
		want   bool
	}{
		{"urgent open", escalationFixture("a", domain.TicketStatusOpen, domain.TicketPriorityUrgent, domain.SentimentNeutral, 0, now), true},
		{"angry in progress", escalationFixture("b", domain.TicketStatusInProgress, domain.TicketPriorityNormal, domain.SentimentAngry, 0, now), true},
		{"frustrated open", escalationFixture("c", domain.TicketStatusOpen, domain.TicketPriorityNormal, domain.SentimentFrustrated, 0, now), true},
		{"calm normal open", escalationFixture("d", domain.TicketStatusOpen, domain.TicketPriorityNormal, domain.SentimentNeutral, 0, now), false},
		{"urgent but resolved", escalationFixture("e", domain.TicketStatusResolved, domain.TicketPriorityUrgent, domain.SentimentAngry, 0, now), false},
		{"urgent but closed", escalationFixture("f", domain.TicketStatusClosed, domain.TicketPriorityUrgent, domain.SentimentNeutral, 0, now), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEscalated(tc.ticket); got != tc.want {
				t.Fatalf("IsEscalated = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReasonPrecedence(t *testing.T) {
	now := time.Now()
	urgent := escalationFixture("a", domain.TicketStatusOpen, domain.TicketPriorityUrgent, domain.SentimentAngry, 0, now)
	if got := Reason(urgent); got != "High Priority" {
		t.Fatalf("Reason = %q, want High Priority", got)
	}
	angry := escalationFixture("b", domain.TicketStatusOpen, domain.TicketPriorityNormal, domain.SentimentAngry, 0, now)
	if got := Reason(angry); got != "Customer Anger" {
		t.Fatalf("Reason = %q, want Customer Anger", got)
	}
	frustrated := escalationFixture("c", domain.TicketStatusOpen, domain.TicketPriorityNormal, domain.SentimentFrustrated, 0, now)
	if got := Reason(frustrated); got != "Customer Frustration" {
		t.Fatalf("Reason = %q, want Customer Frustration", got)
	}
}

func TestRecomputeMetrics(t *testing.T) {
	ticketStore := store.New(store.NewMemoryRepository(), nil, nil)
	policy := NewPolicy(ticketStore, zap.NewNop())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy.now = func() time.Time { return now }

	policy.Recompute([]domain.Ticket{
		escalationFixture("a", domain.TicketStatusOpen, domain.TicketPriorityUrgent, domain.SentimentNeutral, 2*time.Hour, now),
		escalationFixture("b", domain.TicketStatusInProgress, domain.TicketPriorityNormal, domain.SentimentAngry, 4*time.Hour, now),
		escalationFixture("c", domain.TicketStatusOpen, domain.TicketPriorityNormal, domain.SentimentNeutral, 8*time.Hour, now),
		escalationFixture("d", domain.TicketStatusResolved, domain.TicketPriorityUrgent, domain.SentimentAngry, 1*time.Hour, now),
	})

	metrics := policy.Metrics()
	if metrics.ActiveEscalations != 2 {
		t.Fatalf("ActiveEscalations = %d, want 2", metrics.ActiveEscalations)
	}
	if metrics.AngryCustomers != 1 {
		t.Fatalf("AngryCustomers = %d, want 1", metrics.AngryCustomers)
	}
	if metrics.AvgAgeHours != 3 {
		t.Fatalf("AvgAgeHours = %v, want 3", metrics.AvgAgeHours)
	}
	// The metric count and the listed set describe the same tickets.
	if len(policy.Escalated()) != metrics.ActiveEscalations {
		t.Fatalf("metrics count %d != listed set %d", metrics.ActiveEscalations, len(policy.Escalated()))
	}
}

func TestRecomputeEmptySetAveragesZero(t *testing.T) {
	ticketStore := store.New(store.NewMemoryRepository(), nil, nil)
	policy := NewPolicy(ticketStore, zap.NewNop())

	policy.Recompute(nil)
	metrics := policy.Metrics()
	if metrics.ActiveEscalations != 0 || metrics.AngryCustomers != 0 || metrics.AvgAgeHours != 0 {
		t.Fatalf("empty set metrics = %+v, want zeros", metrics)
	}
}

func TestResolveIdempotentUnderDuplicates(t *testing.T) {
	ticketStore := store.New(store.NewMemoryRepository(), nil, nil)
	policy := NewPolicy(ticketStore, zap.NewNop())

	classification := domain.DefaultClassification()
	classification.Priority = domain.TicketPriorityUrgent
	ticket, err := ticketStore.Create(context.Background(), store.CreateInput{
		Title:          "checkout down",
		Description:    "payments failing for all users",
		Source:         domain.SourceAPI,
		Classification: classification,
		Assignment:     route.Assignment{Team: domain.TeamCall, InitialStatus: domain.TicketStatusOpen},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := policy.Resolve(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := policy.Resolve(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("duplicate resolve: %v", err)
	}
	if first.Status != domain.TicketStatusResolved || second.Status != domain.TicketStatusResolved {
		t.Fatalf("statuses = %q, %q", first.Status, second.Status)
	}
}

func TestAssignToMemberMovesOpenTicketToInProgress(t *testing.T) {
	ticketStore := store.New(store.NewMemoryRepository(), nil, nil)
	policy := NewPolicy(ticketStore, zap.NewNop())

	classification := domain.DefaultClassification()
	classification.Sentiment = domain.SentimentAngry
	ticket, err := ticketStore.Create(context.Background(), store.CreateInput{
		Title:          "very unhappy customer",
		Description:    "escalation requested",
		Source:         domain.SourceEmail,
		Classification: classification,
		Assignment:     route.Assignment{Team: domain.TeamAssistant, InitialStatus: domain.TicketStatusOpen},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := policy.AssignToMember(context.Background(), ticket.ID, "member-7")
	if err != nil {
		t.Fatalf("AssignToMember: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("status = %q, want in_progress", updated.Status)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != "member-7" {
		t.Fatalf("assignedTo = %v, want member-7", updated.AssignedTo)
	}

	// Assigning again keeps in_progress and just moves the assignee.
	again, err := policy.AssignToMember(context.Background(), ticket.ID, "member-8")
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if again.Status != domain.TicketStatusInProgress {
		t.Fatalf("status after reassign = %q", again.Status)
	}
}

func TestDegradedFlagLifecycle(t *testing.T) {
	ticketStore := store.New(store.NewMemoryRepository(), nil, nil)
	policy := NewPolicy(ticketStore, zap.NewNop())

	policy.Recompute([]domain.Ticket{
		escalationFixture("a", domain.TicketStatusOpen, domain.TicketPriorityUrgent, domain.SentimentNeutral, time.Hour, time.Now()),
	})
	if policy.Degraded() {
		t.Fatal("fresh view marked degraded")
	}

	policy.markDegraded()
	if !policy.Degraded() {
		t.Fatal("markDegraded did not flag the view")
	}
	if got := policy.Metrics().ActiveEscalations; got != 1 {
		t.Fatalf("degraded view dropped metrics: %d", got)
	}

	// A healthy recompute clears the flag.
	policy.Recompute(nil)
	if policy.Degraded() {
		t.Fatal("healthy recompute left the view degraded")
	}
}
