// Package escalation keeps a derived view of tickets needing expedited
// human attention. The view is recomputed on every change-feed tick, not
// polled.
package escalation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/feed"
	"github.com/logic-legends/triage-service/internal/store"
)

// IsEscalated reports whether a ticket is an active escalation: still
// open or in progress, and either priority-tier or carrying an angry or
// frustrated customer.
func IsEscalated(t domain.Ticket) bool {
	if !t.IsActive() {
		return false
	}
	return t.Priority == domain.TicketPriorityUrgent ||
		t.Sentiment == domain.SentimentAngry ||
		t.Sentiment == domain.SentimentFrustrated
}

// Reason names why a ticket was escalated, for display alongside it.
func Reason(t domain.Ticket) string {
	switch {
	case t.Priority == domain.TicketPriorityUrgent:
		return "High Priority"
	case t.Sentiment == domain.SentimentAngry:
		return "Customer Anger"
	case t.Sentiment == domain.SentimentFrustrated:
		return "Customer Frustration"
	default:
		return "Requires Attention"
	}
}

// Metrics summarizes the current escalation set.
type Metrics struct {
	ActiveEscalations int
	AngryCustomers    int
	AvgAgeHours       float64
	ComputedAt        time.Time
}

// Policy is the continuously recomputed escalation view plus the two
// caller actions that feed back into the store.
type Policy struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	metrics  Metrics
	tickets  []domain.Ticket
	degraded bool
}

// NewPolicy builds the policy over the given store.
func NewPolicy(ticketStore *store.Store, logger *zap.Logger) *Policy {
	return &Policy{
		store:  ticketStore,
		logger: logger,
		now:    time.Now,
	}
}

// Run consumes feed ticks until the context ends or the subscription
// closes. Degraded ticks keep the previous view and flag it stale.
func (p *Policy) Run(ctx context.Context, sub *feed.Subscription) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-sub.Updates():
			if !ok {
				return
			}
			if snapshot.Degraded() {
				p.markDegraded()
				continue
			}
			p.Recompute(snapshot.Tickets)
		}
	}
}

// Recompute rebuilds the escalation set and metrics from a full ticket
// snapshot. Age is wall-clock elapsed hours; the empty set averages to 0.
func (p *Policy) Recompute(tickets []domain.Ticket) {
	escalated := make([]domain.Ticket, 0)
	angry := 0
	var totalHours float64
	now := p.now()

	for _, ticket := range tickets {
		if !IsEscalated(ticket) {
			continue
		}
		escalated = append(escalated, ticket)
		if ticket.Sentiment == domain.SentimentAngry {
			angry++
		}
		totalHours += now.Sub(ticket.CreatedAt).Hours()
	}

	avgAge := 0.0
	if len(escalated) > 0 {
		avgAge = totalHours / float64(len(escalated))
	}

	p.mu.Lock()
	p.tickets = escalated
	p.metrics = Metrics{
		ActiveEscalations: len(escalated),
		AngryCustomers:    angry,
		AvgAgeHours:       avgAge,
		ComputedAt:        now,
	}
	p.degraded = false
	p.mu.Unlock()
}

// Metrics returns the latest computed metrics.
func (p *Policy) Metrics() Metrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.metrics
}

// Escalated returns the current escalation set.
func (p *Policy) Escalated() []domain.Ticket {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.Ticket, len(p.tickets))
	copy(out, p.tickets)
	return out
}

// Degraded reports whether the view is stale because the store was
// unreachable on the last tick.
func (p *Policy) Degraded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.degraded
}

// Resolve transitions the ticket to resolved. Concurrent duplicate calls
// both succeed; the store treats the repeat as a no-op.
func (p *Policy) Resolve(ctx context.Context, id string) (*domain.Ticket, error) {
	resolved := domain.TicketStatusResolved
	return p.store.Update(ctx, id, store.Patch{Status: &resolved})
}

// AssignToMember hands the ticket to a specific team member, moving it to
// in_progress when it is still open. Idempotent under concurrent
// duplicates.
func (p *Policy) AssignToMember(ctx context.Context, id, memberID string) (*domain.Ticket, error) {
	ticket, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := store.Patch{AssignedTo: &memberID}
	if ticket.Status == domain.TicketStatusOpen {
		inProgress := domain.TicketStatusInProgress
		patch.Status = &inProgress
	}
	return p.store.Update(ctx, id, patch)
}

func (p *Policy) markDegraded() {
	p.mu.Lock()
	p.degraded = true
	p.mu.Unlock()
	p.logger.Warn("escalation view stale: feed tick degraded")
}
