package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/classify"
	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/store"
)

func newTriageFixture(t *testing.T) *TriageService {
	t.Helper()
	ticketStore := store.New(store.NewMemoryRepository(), nil, nil)
	return NewTriageService(ticketStore, classify.NewKeywordClassifier(), zap.NewNop())
}

func TestIntakeUrgentAngryRoutesToCallTeam(t *testing.T) {
	triage := newTriageFixture(t)

	ticket, err := triage.Intake(context.Background(), IntakeInput{
		Title:       "URGENT: site is down",
		Description: "I am furious, nothing works and we are losing money",
		Source:      domain.SourceCall,
		Customer:    domain.CustomerInfo{Name: "Dana", Email: "dana@example.com"},
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}

	if ticket.Priority != domain.TicketPriorityUrgent {
		t.Fatalf("priority = %q, want %q", ticket.Priority, domain.TicketPriorityUrgent)
	}
	if ticket.Sentiment != domain.SentimentAngry {
		t.Fatalf("sentiment = %q, want angry", ticket.Sentiment)
	}
	if ticket.AssignedTo == nil || *ticket.AssignedTo != string(domain.TeamCall) {
		t.Fatalf("assignedTo = %v, want call_team", ticket.AssignedTo)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("status = %q, want open", ticket.Status)
	}
}

func TestIntakeModerateBillingRoutesToEmailTeam(t *testing.T) {
	triage := newTriageFixture(t)

	ticket, err := triage.Intake(context.Background(), IntakeInput{
		Title:       "Billing problem",
		Description: "I was charged twice for my subscription payment",
		Source:      domain.SourceEmail,
		Customer:    domain.CustomerInfo{Name: "Ravi", Email: "ravi@example.com"},
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}

	if ticket.Priority != domain.TicketPriorityModerate {
		t.Fatalf("priority = %q, want moderate", ticket.Priority)
	}
	if ticket.Category != "billing" {
		t.Fatalf("category = %q, want billing", ticket.Category)
	}
	if ticket.AssignedTo == nil || *ticket.AssignedTo != string(domain.TeamEmail) {
		t.Fatalf("assignedTo = %v, want email_team", ticket.AssignedTo)
	}
}

func TestIntakeNeutralStaysWithAssistant(t *testing.T) {
	triage := newTriageFixture(t)

	ticket, err := triage.Intake(context.Background(), IntakeInput{
		Title:       "Question about plans",
		Description: "which plan includes the reporting features?",
		Source:      domain.SourceChat,
		Customer:    domain.CustomerInfo{Name: "Lee", Email: "lee@example.com"},
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}

	if ticket.Priority != domain.TicketPriorityNormal {
		t.Fatalf("priority = %q, want normal", ticket.Priority)
	}
	if ticket.AssignedTo != nil {
		t.Fatalf("assistant ticket has assignee %q", *ticket.AssignedTo)
	}
}

func TestIntakeCategoryHintWins(t *testing.T) {
	triage := newTriageFixture(t)

	ticket, err := triage.Intake(context.Background(), IntakeInput{
		Title:        "payment declined",
		Description:  "card keeps getting rejected",
		CategoryHint: "account",
		Source:       domain.SourceAPI,
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if ticket.Category != "account" {
		t.Fatalf("category = %q, want the account hint", ticket.Category)
	}
}

func TestReclassifyKeepsQueue(t *testing.T) {
	triage := newTriageFixture(t)

	ticket, err := triage.Intake(context.Background(), IntakeInput{
		Title:       "Billing issue",
		Description: "double charge on the invoice",
		Source:      domain.SourceEmail,
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	originalAssignee := *ticket.AssignedTo

	reclassified, err := triage.Reclassify(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("Reclassify: %v", err)
	}
	if reclassified.AssignedTo == nil || *reclassified.AssignedTo != originalAssignee {
		t.Fatalf("reclassify moved the ticket from %q to %v", originalAssignee, reclassified.AssignedTo)
	}
	if reclassified.Priority != domain.TicketPriorityModerate {
		t.Fatalf("priority = %q", reclassified.Priority)
	}
}

func TestOverviewRollup(t *testing.T) {
	triage := newTriageFixture(t)
	ctx := context.Background()

	urgent, err := triage.Intake(ctx, IntakeInput{
		Title: "emergency outage", Description: "everything is broken and damaged", Source: domain.SourceAPI,
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if _, err := triage.Intake(ctx, IntakeInput{
		Title: "plan question", Description: "what does the pro plan include?", Source: domain.SourceChat,
	}); err != nil {
		t.Fatalf("Intake: %v", err)
	}

	resolved := domain.TicketStatusResolved
	if _, err := triage.Update(ctx, urgent.ID, store.Patch{Status: &resolved}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	overview, err := triage.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.TotalTickets != 2 || overview.ResolvedTickets != 1 {
		t.Fatalf("overview = %+v", overview)
	}
	if overview.ResolutionRate != 0.5 {
		t.Fatalf("resolution rate = %v, want 0.5", overview.ResolutionRate)
	}
	if overview.PriorityDistribution[domain.TicketPriorityUrgent] != 1 {
		t.Fatalf("priority distribution = %+v", overview.PriorityDistribution)
	}
	if overview.WasteByCategory[domain.WasteProductDefect] != 1 {
		t.Fatalf("waste rollup = %+v", overview.WasteByCategory)
	}
}
