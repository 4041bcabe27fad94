package store

import (
	"context"
	"sort"
	"sync"

	"github.com/logic-legends/triage-service/internal/domain"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// MemoryRepository is an in-process Repository. It backs unit tests and
// single-node deployments without a database, and preserves the same
// snapshot semantics the pgx repository provides.
type MemoryRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tickets: make(map[string]domain.Ticket)}
}

// Insert stores a new ticket.
func (m *MemoryRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tickets[ticket.ID]; exists {
		return apperrors.NewConflict("ticket already exists", map[string]any{"ticket_id": ticket.ID})
	}
	m.tickets[ticket.ID] = *ticket
	return nil
}

// Get returns a copy of the stored ticket.
func (m *MemoryRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return &ticket, nil
}

// Apply replaces the stored row while its status still matches
// expectedStatus.
func (m *MemoryRepository) Apply(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.tickets[ticket.ID]
	if !ok {
		return false, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticket.ID})
	}
	if current.Status != expectedStatus {
		return false, nil
	}
	m.tickets[ticket.ID] = *ticket
	return true, nil
}

// List returns tickets matching the filter in the requested order.
func (m *MemoryRepository) List(ctx context.Context, filter Filter) ([]domain.Ticket, error) {
	m.mu.RLock()
	result := make([]domain.Ticket, 0, len(m.tickets))
	for _, ticket := range m.tickets {
		if matches(ticket, filter) {
			result = append(result, ticket)
		}
	}
	m.mu.RUnlock()

	SortTickets(result, filter.SortBy)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func matches(ticket domain.Ticket, filter Filter) bool {
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
		return false
	}
	if len(filter.Sources) > 0 && !containsSource(filter.Sources, ticket.Source) {
		return false
	}
	if filter.AssignedTo != nil {
		if ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssignedTo {
			return false
		}
	}
	return true
}

// SortTickets orders tickets by the sort key with an id tie-break so
// equal keys keep a stable order.
func SortTickets(tickets []domain.Ticket, key SortKey) {
	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := tickets[i], tickets[j]
		switch key {
		case SortByUpdatedAt:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
		case SortByPriority:
			if a.Priority.Weight() != b.Priority.Weight() {
				return a.Priority.Weight() > b.Priority.Weight()
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})
}

func containsStatus(list []domain.TicketStatus, v domain.TicketStatus) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, v domain.TicketPriority) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsSource(list []domain.TicketSource, v domain.TicketSource) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
