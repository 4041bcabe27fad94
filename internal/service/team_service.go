package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/events"
	"github.com/logic-legends/triage-service/internal/repository"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

const presenceTTL = 5 * time.Minute

// TeamService manages the human handler roster. Presence lives in Redis
// with a TTL so crashed agents age out to offline; workload counters live
// with the member row and move only on committed ticket transitions.
type TeamService struct {
	members repository.TeamMemberRepository
	redis   *redis.Client
	logger  *zap.Logger
}

// NewTeamService constructs the service. Redis may be nil; presence then
// reads as offline.
func NewTeamService(members repository.TeamMemberRepository, redisClient *redis.Client, logger *zap.Logger) *TeamService {
	return &TeamService{
		members: members,
		redis:   redisClient,
		logger:  logger,
	}
}

// AddMember registers a new handler, starting offline with zero counters.
func (s *TeamService) AddMember(ctx context.Context, name, email string, role domain.MemberRole) (*domain.TeamMember, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email required", nil)
	}
	if role != domain.RoleCaller && role != domain.RoleEmailTeam {
		return nil, apperrors.NewValidationError("role must be caller or email_team", map[string]any{"role": role})
	}

	member := &domain.TeamMember{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  email,
		Role:   role,
		Status: domain.PresenceOffline,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// RemoveMember deletes a handler from the roster.
func (s *TeamService) RemoveMember(ctx context.Context, id string) error {
	if err := s.members.Delete(ctx, id); err != nil {
		return err
	}
	if s.redis != nil {
		_ = s.redis.Del(ctx, presenceKey(id)).Err()
	}
	return nil
}

// ListMembers returns the roster with live presence merged in.
func (s *TeamService) ListMembers(ctx context.Context) ([]domain.TeamMember, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].Status = s.presence(ctx, members[i].ID)
	}
	return members, nil
}

// GetMember returns one handler with live presence.
func (s *TeamService) GetMember(ctx context.Context, id string) (*domain.TeamMember, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	member.Status = s.presence(ctx, member.ID)
	return member, nil
}

// SetPresence updates a member's availability.
func (s *TeamService) SetPresence(ctx context.Context, id string, status domain.PresenceStatus) error {
	switch status {
	case domain.PresenceOnline, domain.PresenceBusy, domain.PresenceAway, domain.PresenceOffline:
	default:
		return apperrors.NewValidationError("invalid presence status", map[string]any{"status": status})
	}
	if _, err := s.members.GetByID(ctx, id); err != nil {
		return err
	}
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, presenceKey(id), string(status), presenceTTL).Err()
}

// TeamStats summarizes the roster.
type TeamStats struct {
	TotalMembers       int
	OnlineMembers      int
	TotalActiveTickets int
	AvgResponseMins    float64
}

// Stats computes roster statistics. Empty rosters average to zero.
func (s *TeamService) Stats(ctx context.Context) (TeamStats, error) {
	members, err := s.ListMembers(ctx)
	if err != nil {
		return TeamStats{}, err
	}
	stats := TeamStats{TotalMembers: len(members)}
	var totalResponse float64
	for _, member := range members {
		if member.Status == domain.PresenceOnline {
			stats.OnlineMembers++
		}
		stats.TotalActiveTickets += member.ActiveTickets
		totalResponse += member.AvgResponseMins
	}
	if len(members) > 0 {
		stats.AvgResponseMins = totalResponse / float64(len(members))
	}
	return stats, nil
}

// RegisterCounterHandlers wires workload counters to committed ticket
// transitions. Events fire only after the store persisted the change, so
// counters cannot run ahead of their ticket.
func (s *TeamService) RegisterCounterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketAssigned, s.handleAssigned)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.handleStatusChanged)
}

func (s *TeamService) handleAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	if payload.OldAssignee != nil {
		s.adjust(ctx, *payload.OldAssignee, -1, 0)
	}
	if payload.NewAssignee != nil {
		s.adjust(ctx, *payload.NewAssignee, 1, 0)
	}
	return nil
}

func (s *TeamService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	if payload.NewStatus == domain.TicketStatusResolved && payload.AssignedTo != nil {
		s.adjust(ctx, *payload.AssignedTo, -1, 1)
	}
	return nil
}

// adjust applies counter deltas for an assignee. Team-kind assignees
// (assistant, email_team, call_team) are queues, not members; the
// NOT_FOUND from the roster lookup is expected and ignored.
func (s *TeamService) adjust(ctx context.Context, assignee string, activeDelta, resolvedDelta int) {
	err := s.members.AdjustCounters(ctx, assignee, activeDelta, resolvedDelta)
	if err != nil && !apperrors.IsCode(err, "NOT_FOUND") {
		s.logger.Warn("counter adjustment failed",
			zap.String("member_id", assignee), zap.Error(err))
	}
}

func (s *TeamService) presence(ctx context.Context, id string) domain.PresenceStatus {
	if s.redis == nil {
		return domain.PresenceOffline
	}
	val, err := s.redis.Get(ctx, presenceKey(id)).Result()
	if err != nil {
		return domain.PresenceOffline
	}
	return domain.PresenceStatus(val)
}

func presenceKey(id string) string {
	return "presence:" + id
}
