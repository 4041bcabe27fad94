package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/classify"
	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/route"
	"github.com/logic-legends/triage-service/internal/store"
)

// TriageService is the single intake path for every source. All entry
// points (chat handoff, email form, call intake, api) classify and route
// through here, so keyword logic cannot drift between them.
type TriageService struct {
	store      *store.Store
	classifier classify.Classifier
	logger     *zap.Logger
}

// NewTriageService constructs the service.
func NewTriageService(ticketStore *store.Store, classifier classify.Classifier, logger *zap.Logger) *TriageService {
	return &TriageService{
		store:      ticketStore,
		classifier: classifier,
		logger:     logger,
	}
}

// IntakeInput describes a raw support request before triage.
type IntakeInput struct {
	Title          string
	Description    string
	CategoryHint   string
	Source         domain.TicketSource
	Customer       domain.CustomerInfo
	VoiceRecording *string
}

// Intake classifies, routes, and persists a support request.
func (s *TriageService) Intake(ctx context.Context, input IntakeInput) (*domain.Ticket, error) {
	classification := s.classifier.Classify(ctx, input.Title+" "+input.Description, input.CategoryHint)
	assignment := route.Route(classification, input.Source)

	ticket, err := s.store.Create(ctx, store.CreateInput{
		Title:          input.Title,
		Description:    input.Description,
		Source:         input.Source,
		Customer:       input.Customer,
		Classification: classification,
		Assignment:     assignment,
		VoiceRecording: input.VoiceRecording,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket triaged",
		zap.String("ticket_id", ticket.ID),
		zap.String("priority", string(ticket.Priority)),
		zap.String("sentiment", string(ticket.Sentiment)),
		zap.String("team", string(assignment.Team)))
	return ticket, nil
}

// Reclassify re-runs the classifier over the stored text and applies the
// result. Routing is not re-applied; an already assigned ticket keeps its
// queue and the escalation view picks up the new classification.
func (s *TriageService) Reclassify(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	classification := s.classifier.Classify(ctx, ticket.Title+" "+ticket.Description, "")
	return s.store.Update(ctx, id, store.Patch{
		Priority:      &classification.Priority,
		Sentiment:     &classification.Sentiment,
		Category:      &classification.Category,
		WasteCategory: &classification.WasteCategory,
	})
}

// Get fetches a ticket.
func (s *TriageService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	return s.store.Get(ctx, id)
}

// Update applies a partial ticket mutation through the store's state
// machine.
func (s *TriageService) Update(ctx context.Context, id string, patch store.Patch) (*domain.Ticket, error) {
	return s.store.Update(ctx, id, patch)
}

// Query lists tickets matching the filter.
func (s *TriageService) Query(ctx context.Context, filter store.Filter) ([]domain.Ticket, error) {
	return s.store.Query(ctx, filter)
}

// AnalyticsOverview is a read-only rollup for dashboards. Consumers never
// mutate tickets through it.
type AnalyticsOverview struct {
	TotalTickets         int
	ResolvedTickets      int
	ResolutionRate       float64
	PriorityDistribution map[domain.TicketPriority]int
	WasteByCategory      map[domain.WasteCategory]int
	SentimentBreakdown   map[domain.Sentiment]int
}

// Overview computes the analytics rollup from query results.
func (s *TriageService) Overview(ctx context.Context) (AnalyticsOverview, error) {
	tickets, err := s.store.Query(ctx, store.Filter{SortBy: store.SortByCreatedAt})
	if err != nil {
		return AnalyticsOverview{}, err
	}

	overview := AnalyticsOverview{
		TotalTickets:         len(tickets),
		PriorityDistribution: make(map[domain.TicketPriority]int),
		WasteByCategory:      make(map[domain.WasteCategory]int),
		SentimentBreakdown:   make(map[domain.Sentiment]int),
	}
	for _, ticket := range tickets {
		overview.PriorityDistribution[ticket.Priority]++
		overview.SentimentBreakdown[ticket.Sentiment]++
		if ticket.WasteCategory != domain.WasteNone {
			overview.WasteByCategory[ticket.WasteCategory]++
		}
		if ticket.Status == domain.TicketStatusResolved || ticket.Status == domain.TicketStatusClosed {
			overview.ResolvedTickets++
		}
	}
	if overview.TotalTickets > 0 {
		overview.ResolutionRate = float64(overview.ResolvedTickets) / float64(overview.TotalTickets)
	}
	return overview, nil
}
