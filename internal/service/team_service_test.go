package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/events"
	"github.com/logic-legends/triage-service/internal/repository"
	"github.com/logic-legends/triage-service/internal/route"
	"github.com/logic-legends/triage-service/internal/store"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

func newTeamFixture(t *testing.T) (*TeamService, *store.Store) {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher()
	ticketStore := store.New(store.NewMemoryRepository(), dispatcher, nil)
	team := NewTeamService(repository.NewMemoryTeamMemberRepository(), nil, zap.NewNop())
	team.RegisterCounterHandlers(dispatcher)
	return team, ticketStore
}

func intakeFixture(t *testing.T, ticketStore *store.Store) *domain.Ticket {
	t.Helper()
	ticket, err := ticketStore.Create(context.Background(), store.CreateInput{
		Title:          "support request",
		Description:    "customer needs help",
		Source:         domain.SourceEmail,
		Classification: domain.DefaultClassification(),
		Assignment:     route.Assignment{Team: domain.TeamAssistant, InitialStatus: domain.TicketStatusOpen},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return ticket
}

func TestAddMemberValidation(t *testing.T) {
	team, _ := newTeamFixture(t)
	ctx := context.Background()

	if _, err := team.AddMember(ctx, "", "a@example.com", domain.RoleCaller); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("empty name: err = %v", err)
	}
	if _, err := team.AddMember(ctx, "Ana", "a@example.com", domain.MemberRole("manager")); !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("bad role: err = %v", err)
	}

	member, err := team.AddMember(ctx, "Ana", "a@example.com", domain.RoleCaller)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if member.Status != domain.PresenceOffline {
		t.Fatalf("new member status = %q, want offline", member.Status)
	}
	if member.ActiveTickets != 0 || member.ResolvedToday != 0 {
		t.Fatalf("new member counters not zero: %+v", member)
	}
}

func TestCountersFollowCommittedTransitions(t *testing.T) {
	team, ticketStore := newTeamFixture(t)
	ctx := context.Background()

	member, err := team.AddMember(ctx, "Ana", "a@example.com", domain.RoleCaller)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	ticket := intakeFixture(t, ticketStore)

	// Assignment increments the active count.
	if _, err := ticketStore.Update(ctx, ticket.ID, store.Patch{AssignedTo: &member.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, err := team.GetMember(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if got.ActiveTickets != 1 {
		t.Fatalf("active after assign = %d, want 1", got.ActiveTickets)
	}

	// Resolution trades the active count for a resolved count.
	resolved := domain.TicketStatusResolved
	if _, err := ticketStore.Update(ctx, ticket.ID, store.Patch{Status: &resolved}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, err = team.GetMember(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if got.ActiveTickets != 0 || got.ResolvedToday != 1 {
		t.Fatalf("after resolve: active=%d resolved=%d, want 0 and 1", got.ActiveTickets, got.ResolvedToday)
	}

	// The duplicate resolve is a no-op transition: no event, no recount.
	if _, err := ticketStore.Update(ctx, ticket.ID, store.Patch{Status: &resolved}); err != nil {
		t.Fatalf("duplicate resolve: %v", err)
	}
	got, err = team.GetMember(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if got.ResolvedToday != 1 {
		t.Fatalf("duplicate resolve double-counted: resolved=%d", got.ResolvedToday)
	}
}

func TestReassignmentMovesActiveCount(t *testing.T) {
	team, ticketStore := newTeamFixture(t)
	ctx := context.Background()

	ana, _ := team.AddMember(ctx, "Ana", "a@example.com", domain.RoleCaller)
	ben, _ := team.AddMember(ctx, "Ben", "b@example.com", domain.RoleEmailTeam)
	ticket := intakeFixture(t, ticketStore)

	if _, err := ticketStore.Update(ctx, ticket.ID, store.Patch{AssignedTo: &ana.ID}); err != nil {
		t.Fatalf("assign ana: %v", err)
	}
	if _, err := ticketStore.Update(ctx, ticket.ID, store.Patch{AssignedTo: &ben.ID}); err != nil {
		t.Fatalf("assign ben: %v", err)
	}

	gotAna, _ := team.GetMember(ctx, ana.ID)
	gotBen, _ := team.GetMember(ctx, ben.ID)
	if gotAna.ActiveTickets != 0 {
		t.Fatalf("ana active = %d, want 0 after reassignment", gotAna.ActiveTickets)
	}
	if gotBen.ActiveTickets != 1 {
		t.Fatalf("ben active = %d, want 1", gotBen.ActiveTickets)
	}
}

func TestTeamQueueAssigneesAreIgnored(t *testing.T) {
	team, ticketStore := newTeamFixture(t)
	ctx := context.Background()

	ticket := intakeFixture(t, ticketStore)
	queue := string(domain.TeamEmail)
	// Queue names are not roster members; the counter handler must treat
	// them as a silent miss, not an error.
	if _, err := ticketStore.Update(ctx, ticket.ID, store.Patch{AssignedTo: &queue}); err != nil {
		t.Fatalf("assign to queue: %v", err)
	}

	stats, err := team.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalActiveTickets != 0 {
		t.Fatalf("queue assignment leaked into member counters: %+v", stats)
	}
}

func TestStatsEmptyRoster(t *testing.T) {
	team, _ := newTeamFixture(t)
	stats, err := team.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalMembers != 0 || stats.AvgResponseMins != 0 {
		t.Fatalf("empty roster stats = %+v, want zeros", stats)
	}
}

func TestRemoveMember(t *testing.T) {
	team, _ := newTeamFixture(t)
	ctx := context.Background()

	member, _ := team.AddMember(ctx, "Ana", "a@example.com", domain.RoleCaller)
	if err := team.RemoveMember(ctx, member.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if _, err := team.GetMember(ctx, member.ID); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("removed member lookup: err = %v, want NOT_FOUND", err)
	}
	if err := team.RemoveMember(ctx, member.ID); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("double remove: err = %v, want NOT_FOUND", err)
	}
}
