package route

import (
	"testing"

	"github.com/logic-legends/triage-service/internal/domain"
)

func TestRouteByPriority(t *testing.T) {
	cases := []struct {
		priority domain.TicketPriority
		want     domain.TeamKind
	}{
		{domain.TicketPriorityUrgent, domain.TeamCall},
		{domain.TicketPriorityModerate, domain.TeamEmail},
		{domain.TicketPriorityNormal, domain.TeamAssistant},
	}
	for _, tc := range cases {
		c := domain.DefaultClassification()
		c.Priority = tc.priority
		got := Route(c, domain.SourceAPI)
		if got.Team != tc.want {
			t.Fatalf("Route(priority=%q).Team = %q, want %q", tc.priority, got.Team, tc.want)
		}
		if got.InitialStatus != domain.TicketStatusOpen {
			t.Fatalf("InitialStatus = %q, want open", got.InitialStatus)
		}
	}
}

func TestRouteIgnoresSource(t *testing.T) {
	c := domain.DefaultClassification()
	c.Priority = domain.TicketPriorityUrgent

	base := Route(c, domain.SourceAPI)
	for _, source := range []domain.TicketSource{domain.SourceChat, domain.SourceEmail, domain.SourceCall} {
		if got := Route(c, source); got != base {
			t.Fatalf("Route varied by source %q: %+v vs %+v", source, got, base)
		}
	}
}

func TestRouteTotalOverUnknownPriority(t *testing.T) {
	c := domain.DefaultClassification()
	c.Priority = domain.TicketPriority("bogus")
	got := Route(c, domain.SourceAPI)
	if got.Team != domain.TeamAssistant {
		t.Fatalf("unknown priority routed to %q, want assistant", got.Team)
	}
}

func TestHumanAssigned(t *testing.T) {
	if (Assignment{Team: domain.TeamAssistant}).HumanAssigned() {
		t.Fatal("assistant counted as human queue")
	}
	if !(Assignment{Team: domain.TeamEmail}).HumanAssigned() {
		t.Fatal("email team not counted as human queue")
	}
	if !(Assignment{Team: domain.TeamCall}).HumanAssigned() {
		t.Fatal("call team not counted as human queue")
	}
}
