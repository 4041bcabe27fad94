package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/logic-legends/triage-service/internal/domain"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// MemoryTeamMemberRepository is the roster store used when no database is
// configured. Same contract as the Postgres repository, per-process only.
type MemoryTeamMemberRepository struct {
	mu      sync.RWMutex
	members map[string]domain.TeamMember
}

// NewMemoryTeamMemberRepository builds an empty roster.
func NewMemoryTeamMemberRepository() *MemoryTeamMemberRepository {
	return &MemoryTeamMemberRepository{members: make(map[string]domain.TeamMember)}
}

func (r *MemoryTeamMemberRepository) Create(ctx context.Context, member *domain.TeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now
	r.members[member.ID] = *member
	return nil
}

func (r *MemoryTeamMemberRepository) GetByID(ctx context.Context, id string) (*domain.TeamMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[id]
	if !ok {
		return nil, apperrors.NewNotFound("team member", map[string]any{"member_id": id})
	}
	return &member, nil
}

func (r *MemoryTeamMemberRepository) List(ctx context.Context) ([]domain.TeamMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]domain.TeamMember, 0, len(r.members))
	for _, member := range r.members {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}

func (r *MemoryTeamMemberRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return apperrors.NewNotFound("team member", map[string]any{"member_id": id})
	}
	delete(r.members, id)
	return nil
}

func (r *MemoryTeamMemberRepository) AdjustCounters(ctx context.Context, id string, activeDelta, resolvedDelta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[id]
	if !ok {
		return apperrors.NewNotFound("team member", map[string]any{"member_id": id})
	}
	member.ActiveTickets += activeDelta
	if member.ActiveTickets < 0 {
		member.ActiveTickets = 0
	}
	member.ResolvedToday += resolvedDelta
	if member.ResolvedToday < 0 {
		member.ResolvedToday = 0
	}
	member.UpdatedAt = time.Now()
	r.members[id] = member
	return nil
}

func (r *MemoryTeamMemberRepository) ResetResolvedToday(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, member := range r.members {
		member.ResolvedToday = 0
		member.UpdatedAt = now
		r.members[id] = member
	}
	return nil
}
