// Package feed fans ticket snapshots out to every active subscriber.
//
// Delivery is snapshot-replace: each tick carries the full, ordered ticket
// set and consumers reconcile idempotently, mirroring whole-collection
// listener semantics rather than a diff stream. Each tick carries a
// sequence number so a diff protocol could be layered in later.
package feed

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/store"
)

// Snapshot is one feed tick. Err marks a degraded tick: the backing store
// was unreachable during recompute and Tickets holds the last known set.
type Snapshot struct {
	Seq     uint64
	Tickets []domain.Ticket
	Err     error
}

// Degraded reports whether the tick was produced while the store was
// unreachable.
func (s Snapshot) Degraded() bool {
	return s.Err != nil
}

// FilterFunc narrows a subscription to a derived sub-collection. Nil
// means the full ticket set.
type FilterFunc func(domain.Ticket) bool

// EmailQueueFilter keeps active tickets assigned to the email team.
func EmailQueueFilter(t domain.Ticket) bool {
	return t.IsActive() && t.AssignedTo != nil && *t.AssignedTo == string(domain.TeamEmail)
}

// PriorityCallsFilter keeps active priority tickets that came in over
// the phone. Priority tickets from other sources belong to their own
// queues.
func PriorityCallsFilter(t domain.Ticket) bool {
	return t.IsActive() && t.Priority == domain.TicketPriorityUrgent && t.Source == domain.SourceCall
}

// Source provides the authoritative ticket set on every tick.
type Source interface {
	Query(ctx context.Context, filter store.Filter) ([]domain.Ticket, error)
}

type subscriber struct {
	ch     chan Snapshot
	filter FilterFunc

	mu     sync.Mutex
	closed bool
}

// Subscription is one reader's handle on the feed. Close unsubscribes and
// stops further delivery without side effects on the store.
type Subscription struct {
	id   uint64
	hub  *Hub
	sub  *subscriber
	once sync.Once
}

// Updates returns the snapshot channel. The channel is closed on
// Subscription.Close.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.sub.ch
}

// Close unsubscribes.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s.id)
	})
}

// Hub is the multi-subscriber broadcast: one logical writer (the ticket
// store) and many concurrent readers. Readers never block the writer;
// a slow reader's pending tick is replaced by the newer one.
type Hub struct {
	source Source
	logger *zap.Logger

	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64
	seq    uint64
	last   []domain.Ticket
}

// NewHub builds a hub over the given snapshot source.
func NewHub(source Source, logger *zap.Logger) *Hub {
	return &Hub{
		source: source,
		logger: logger,
		subs:   make(map[uint64]*subscriber),
	}
}

// Subscribe registers a reader and immediately delivers the current
// snapshot so new viewers are consistent without waiting for a change.
func (h *Hub) Subscribe(ctx context.Context, filter FilterFunc) *Subscription {
	sub := &subscriber{
		ch:     make(chan Snapshot, 1),
		filter: filter,
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = sub
	h.mu.Unlock()

	snapshot := h.recompute(ctx)
	deliver(sub, snapshot)

	return &Subscription{id: id, hub: h, sub: sub}
}

// TicketChanged recomputes the snapshot and fans it out. Called by the
// store after every committed mutation.
func (h *Hub) TicketChanged(ctx context.Context) {
	snapshot := h.recompute(ctx)

	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		deliver(sub, snapshot)
	}
}

// SubscriberCount reports active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) recompute(ctx context.Context) Snapshot {
	tickets, err := h.source.Query(ctx, store.Filter{SortBy: store.SortByCreatedAt})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	if err != nil {
		// Degraded tick: keep serving the last known set so subscribers
		// see the outage instead of silently stalling.
		h.logger.Warn("feed recompute failed", zap.Error(err))
		return Snapshot{Seq: h.seq, Tickets: h.last, Err: err}
	}
	h.last = tickets
	return Snapshot{Seq: h.seq, Tickets: tickets}
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if ok {
		sub.mu.Lock()
		sub.closed = true
		close(sub.ch)
		sub.mu.Unlock()
	}
}

// deliver pushes a snapshot without blocking: when the reader has not
// drained the previous tick it is replaced, since every tick supersedes
// the one before it.
func deliver(sub *subscriber, snapshot Snapshot) {
	filtered := snapshot
	if sub.filter != nil {
		kept := make([]domain.Ticket, 0, len(snapshot.Tickets))
		for _, ticket := range snapshot.Tickets {
			if sub.filter(ticket) {
				kept = append(kept, ticket)
			}
		}
		filtered.Tickets = kept
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	for {
		select {
		case sub.ch <- filtered:
			return
		default:
			select {
			case <-sub.ch:
			default:
			}
		}
	}
}
