package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/store"
)

type fakeSource struct {
	mu      sync.Mutex
	tickets []domain.Ticket
	err     error
}

func (f *fakeSource) Query(ctx context.Context, filter store.Filter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Ticket, len(f.tickets))
	copy(out, f.tickets)
	return out, nil
}

func (f *fakeSource) set(tickets []domain.Ticket, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets = tickets
	f.err = err
}

func ticketFixture(id string, priority domain.TicketPriority, assignee string) domain.Ticket {
	t := domain.Ticket{
		ID:        id,
		Title:     "t-" + id,
		Priority:  priority,
		Sentiment: domain.SentimentNeutral,
		Status:    domain.TicketStatusOpen,
		Source:    domain.SourceAPI,
	}
	if assignee != "" {
		t.AssignedTo = &assignee
	}
	return t
}

func receive(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snapshot, ok := <-sub.Updates():
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return snapshot
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	source := &fakeSource{tickets: []domain.Ticket{ticketFixture("a", domain.TicketPriorityNormal, "")}}
	hub := NewHub(source, zap.NewNop())

	sub := hub.Subscribe(context.Background(), nil)
	defer sub.Close()

	snapshot := receive(t, sub)
	if len(snapshot.Tickets) != 1 || snapshot.Tickets[0].ID != "a" {
		t.Fatalf("initial snapshot = %+v", snapshot.Tickets)
	}
	if snapshot.Degraded() {
		t.Fatal("healthy snapshot marked degraded")
	}
}

func TestTicketChangedFansOutToAllSubscribers(t *testing.T) {
	source := &fakeSource{}
	hub := NewHub(source, zap.NewNop())

	first := hub.Subscribe(context.Background(), nil)
	defer first.Close()
	second := hub.Subscribe(context.Background(), nil)
	defer second.Close()
	receive(t, first)
	receive(t, second)

	source.set([]domain.Ticket{ticketFixture("a", domain.TicketPriorityNormal, "")}, nil)
	hub.TicketChanged(context.Background())

	for _, sub := range []*Subscription{first, second} {
		snapshot := receive(t, sub)
		if len(snapshot.Tickets) != 1 {
			t.Fatalf("subscriber missed the tick: %+v", snapshot.Tickets)
		}
	}
}

func TestSlowReaderSeesOnlyLatestSnapshot(t *testing.T) {
	source := &fakeSource{}
	hub := NewHub(source, zap.NewNop())

	sub := hub.Subscribe(context.Background(), nil)
	defer sub.Close()
	receive(t, sub)

	// Three ticks without the reader draining; the pending tick is
	// replaced each time, never blocking the writer.
	for _, id := range []string{"a", "b", "c"} {
		source.set([]domain.Ticket{ticketFixture(id, domain.TicketPriorityNormal, "")}, nil)
		hub.TicketChanged(context.Background())
	}

	snapshot := receive(t, sub)
	if len(snapshot.Tickets) != 1 || snapshot.Tickets[0].ID != "c" {
		t.Fatalf("slow reader got %+v, want only the latest set", snapshot.Tickets)
	}

	select {
	case extra, ok := <-sub.Updates():
		if ok {
			t.Fatalf("unexpected buffered snapshot: %+v", extra.Tickets)
		}
	default:
	}
}

func TestSequenceNumbersIncrease(t *testing.T) {
	source := &fakeSource{}
	hub := NewHub(source, zap.NewNop())

	sub := hub.Subscribe(context.Background(), nil)
	defer sub.Close()
	prev := receive(t, sub).Seq

	for i := 0; i < 3; i++ {
		hub.TicketChanged(context.Background())
		snapshot := receive(t, sub)
		if snapshot.Seq <= prev {
			t.Fatalf("seq %d not after %d", snapshot.Seq, prev)
		}
		prev = snapshot.Seq
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	source := &fakeSource{}
	hub := NewHub(source, zap.NewNop())

	sub := hub.Subscribe(context.Background(), nil)
	receive(t, sub)
	if hub.SubscriberCount() != 1 {
		t.Fatalf("subscribers = %d, want 1", hub.SubscriberCount())
	}

	sub.Close()
	if hub.SubscriberCount() != 0 {
		t.Fatalf("subscribers after close = %d, want 0", hub.SubscriberCount())
	}

	// Double close is safe, and further ticks do not panic.
	sub.Close()
	hub.TicketChanged(context.Background())

	if _, ok := <-sub.Updates(); ok {
		t.Fatal("channel still open after Close")
	}
}

func TestDegradedTickKeepsLastKnownTickets(t *testing.T) {
	source := &fakeSource{tickets: []domain.Ticket{ticketFixture("a", domain.TicketPriorityNormal, "")}}
	hub := NewHub(source, zap.NewNop())

	sub := hub.Subscribe(context.Background(), nil)
	defer sub.Close()
	receive(t, sub)

	source.set(nil, errors.New("connection refused"))
	hub.TicketChanged(context.Background())

	snapshot := receive(t, sub)
	if !snapshot.Degraded() {
		t.Fatal("tick not marked degraded")
	}
	if len(snapshot.Tickets) != 1 || snapshot.Tickets[0].ID != "a" {
		t.Fatalf("degraded tick lost last known tickets: %+v", snapshot.Tickets)
	}

	// Recovery produces a healthy tick again.
	source.set([]domain.Ticket{ticketFixture("b", domain.TicketPriorityNormal, "")}, nil)
	hub.TicketChanged(context.Background())
	snapshot = receive(t, sub)
	if snapshot.Degraded() || snapshot.Tickets[0].ID != "b" {
		t.Fatalf("recovery tick = %+v degraded=%v", snapshot.Tickets, snapshot.Degraded())
	}
}

func TestEmailQueueFilter(t *testing.T) {
	email := string(domain.TeamEmail)
	source := &fakeSource{tickets: []domain.Ticket{
		ticketFixture("a", domain.TicketPriorityModerate, email),
		ticketFixture("b", domain.TicketPriorityNormal, ""),
		ticketFixture("c", domain.TicketPriorityUrgent, string(domain.TeamCall)),
	}}
	hub := NewHub(source, zap.NewNop())

	sub := hub.Subscribe(context.Background(), EmailQueueFilter)
	defer sub.Close()

	snapshot := receive(t, sub)
	if len(snapshot.Tickets) != 1 || snapshot.Tickets[0].ID != "a" {
		t.Fatalf("email queue = %+v, want only ticket a", snapshot.Tickets)
	}
}

func TestPriorityCallsFilterKeepsActiveCallTickets(t *testing.T) {
	urgentCall := ticketFixture("a", domain.TicketPriorityUrgent, "")
	urgentCall.Source = domain.SourceCall
	resolvedCall := ticketFixture("b", domain.TicketPriorityUrgent, "")
	resolvedCall.Source = domain.SourceCall
	resolvedCall.Status = domain.TicketStatusResolved
	urgentEmail := ticketFixture("c", domain.TicketPriorityUrgent, "")
	urgentEmail.Source = domain.SourceEmail
	normalCall := ticketFixture("d", domain.TicketPriorityNormal, "")
	normalCall.Source = domain.SourceCall
	source := &fakeSource{tickets: []domain.Ticket{urgentCall, resolvedCall, urgentEmail, normalCall}}
	hub := NewHub(source, zap.NewNop())

	sub := hub.Subscribe(context.Background(), PriorityCallsFilter)
	defer sub.Close()

	snapshot := receive(t, sub)
	if len(snapshot.Tickets) != 1 || snapshot.Tickets[0].ID != "a" {
		t.Fatalf("priority calls = %+v, want only ticket a", snapshot.Tickets)
	}
}
