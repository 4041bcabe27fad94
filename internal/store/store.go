package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/events"
	"github.com/logic-legends/triage-service/internal/route"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// SortKey selects the ordering for Query results.
type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByUpdatedAt SortKey = "updatedAt"
	SortByPriority  SortKey = "priority"
)

// Filter narrows Query results. Empty fields match everything. CreatedAt
// and updatedAt sort newest first, priority sorts highest weight first;
// equal keys tie-break ascending by id so ordering is stable. Limit <= 0
// returns the full matching set.
type Filter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Sources    []domain.TicketSource
	AssignedTo *string
	SortBy     SortKey
	Limit      int
}

// Patch carries partial ticket updates. Nil fields are left untouched.
type Patch struct {
	Status        *domain.TicketStatus
	Priority      *domain.TicketPriority
	Sentiment     *domain.Sentiment
	Category      *string
	WasteCategory *domain.WasteCategory
	AssignedTo    *string
}

// Repository is the persistence collaborator behind the store. Apply
// replaces the ticket row only while its status still equals
// expectedStatus, so concurrent writers cannot slip a backward move past
// the state machine.
type Repository interface {
	Insert(ctx context.Context, ticket *domain.Ticket) error
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Apply(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus) (bool, error)
	List(ctx context.Context, filter Filter) ([]domain.Ticket, error)
}

// ChangeNotifier receives a nudge after every committed mutation. The
// change feed hub implements it.
type ChangeNotifier interface {
	TicketChanged(ctx context.Context)
}

// CreateInput describes a fully triaged ticket to persist.
type CreateInput struct {
	Title          string
	Description    string
	Source         domain.TicketSource
	Customer       domain.CustomerInfo
	Classification domain.Classification
	Assignment     route.Assignment
	VoiceRecording *string
}

// Store owns ticket identity and the lifecycle state machine. Timestamps
// are server-assigned and monotonically non-decreasing; client-supplied
// times are never trusted.
type Store struct {
	repo       Repository
	dispatcher events.Dispatcher
	notifier   ChangeNotifier
	now        func() time.Time

	mu        sync.Mutex
	lastStamp time.Time
}

// New builds a Store. Dispatcher and notifier may be nil.
func New(repo Repository, dispatcher events.Dispatcher, notifier ChangeNotifier) *Store {
	return &Store{
		repo:       repo,
		dispatcher: dispatcher,
		notifier:   notifier,
		now:        time.Now,
	}
}

// SetChangeNotifier wires the change feed after construction. The store
// and the feed hub reference each other, so one side attaches late.
func (s *Store) SetChangeNotifier(notifier ChangeNotifier) {
	s.notifier = notifier
}

// Lifecycle moves only forward: open -> in_progress -> resolved -> closed,
// with the open -> resolved short-circuit for flows that skip in_progress.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusResolved},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Create persists a new ticket. Fails with VALIDATION_FAILED when title or
// description is empty; the caller always learns whether persistence
// happened.
func (s *Store) Create(ctx context.Context, input CreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if description == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}

	now := s.stamp()
	ticket := &domain.Ticket{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    description,
		Category:       input.Classification.Category,
		Priority:       input.Classification.Priority,
		Sentiment:      input.Classification.Sentiment,
		WasteCategory:  input.Classification.WasteCategory,
		Status:         input.Assignment.InitialStatus,
		Source:         input.Source,
		Customer:       input.Customer,
		VoiceRecording: input.VoiceRecording,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.Assignment.HumanAssigned() {
		team := string(input.Assignment.Team)
		ticket.AssignedTo = &team
	}

	if err := s.repo.Insert(ctx, ticket); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Priority:   ticket.Priority,
			Sentiment:  ticket.Sentiment,
			Category:   ticket.Category,
			Source:     ticket.Source,
			AssignedTo: ticket.AssignedTo,
			Title:      ticket.Title,
		},
	})
	s.notifyChanged(ctx)
	return ticket, nil
}

// Get fetches a ticket by id.
func (s *Store) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.repo.Get(ctx, id)
}

// Query lists tickets matching the filter.
func (s *Store) Query(ctx context.Context, filter Filter) ([]domain.Ticket, error) {
	return s.repo.List(ctx, filter)
}

// Update applies a partial mutation. Invalid transitions and unknown ids
// fail without touching state. A no-op status change (already in the
// requested state) succeeds idempotently so concurrent duplicate calls
// cannot double-fire side effects; the no-op covers the status field
// only, other fields in the same patch are still applied.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Retries cover the cross-process race where another writer commits
	// between our read and the guarded apply.
	for attempt := 0; attempt < 3; attempt++ {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		statusChanged := patch.Status != nil && *patch.Status != current.Status
		if patch.Status != nil && !statusChanged && patchIsStatusOnly(patch) {
			// The no-op applies to the status field alone. A mixed patch
			// falls through so its other fields still land.
			ticket := *current
			return &ticket, nil
		}
		if statusChanged && !isValidTransition(current.Status, *patch.Status) {
			return nil, apperrors.NewInvalidTransition(string(current.Status), string(*patch.Status))
		}

		next := *current
		oldStatus := current.Status
		oldAssignee := current.AssignedTo
		applyPatch(&next, patch)
		if statusChanged && next.Status != domain.TicketStatusOpen && next.AssignedTo == nil {
			// assignedTo must be set no later than the first move away
			// from open; unrouted tickets stay with the assistant.
			assistant := string(domain.TeamAssistant)
			next.AssignedTo = &assistant
		}
		next.UpdatedAt = s.stampLocked()

		ok, err := s.repo.Apply(ctx, &next, current.Status)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if statusChanged {
			s.publish(ctx, events.Event{
				Type:     events.EventTicketStatusChanged,
				TicketID: next.ID,
				Payload: events.TicketStatusChangedPayload{
					OldStatus:  oldStatus,
					NewStatus:  next.Status,
					AssignedTo: next.AssignedTo,
				},
			})
		}
		if patch.AssignedTo != nil && !equalPtr(oldAssignee, next.AssignedTo) {
			s.publish(ctx, events.Event{
				Type:     events.EventTicketAssigned,
				TicketID: next.ID,
				Payload: events.TicketAssignedPayload{
					OldAssignee: oldAssignee,
					NewAssignee: next.AssignedTo,
				},
			})
		}
		if patch.Priority != nil || patch.Sentiment != nil || patch.Category != nil || patch.WasteCategory != nil {
			s.publish(ctx, events.Event{
				Type:     events.EventTicketReclassified,
				TicketID: next.ID,
				Payload: events.TicketReclassifiedPayload{
					Priority:  next.Priority,
					Sentiment: next.Sentiment,
					Category:  next.Category,
				},
			})
		}
		s.notifyChanged(ctx)
		return &next, nil
	}
	return nil, apperrors.NewConflict("concurrent update contention", map[string]any{"ticket_id": id})
}

func patchIsStatusOnly(patch Patch) bool {
	return patch.Priority == nil && patch.Sentiment == nil && patch.Category == nil &&
		patch.WasteCategory == nil && patch.AssignedTo == nil
}

func applyPatch(ticket *domain.Ticket, patch Patch) {
	if patch.Status != nil {
		ticket.Status = *patch.Status
	}
	if patch.Priority != nil {
		ticket.Priority = *patch.Priority
	}
	if patch.Sentiment != nil {
		ticket.Sentiment = *patch.Sentiment
	}
	if patch.Category != nil {
		ticket.Category = *patch.Category
	}
	if patch.WasteCategory != nil {
		ticket.WasteCategory = *patch.WasteCategory
	}
	if patch.AssignedTo != nil {
		assignee := *patch.AssignedTo
		ticket.AssignedTo = &assignee
	}
}

// stamp returns a server-assigned timestamp that never goes backward,
// so updatedAt remains the sole visible tie-breaker across writers.
func (s *Store) stamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stampLocked()
}

func (s *Store) stampLocked() time.Time {
	now := s.now()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = now
	return now
}

func (s *Store) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *Store) notifyChanged(ctx context.Context) {
	if s.notifier != nil {
		s.notifier.TicketChanged(ctx)
	}
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
