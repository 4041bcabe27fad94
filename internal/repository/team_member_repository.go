package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logic-legends/triage-service/internal/domain"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// TeamMemberRepository persists the human handler roster. Workload
// counters live here; presence lives in Redis with a TTL.
type TeamMemberRepository interface {
	Create(ctx context.Context, member *domain.TeamMember) error
	GetByID(ctx context.Context, id string) (*domain.TeamMember, error)
	List(ctx context.Context) ([]domain.TeamMember, error)
	Delete(ctx context.Context, id string) error
	AdjustCounters(ctx context.Context, id string, activeDelta, resolvedDelta int) error
	ResetResolvedToday(ctx context.Context) error
}

type teamMemberRepository struct {
	pool *pgxpool.Pool
}

// NewTeamMemberRepository instantiates the repository.
func NewTeamMemberRepository(pool *pgxpool.Pool) TeamMemberRepository {
	return &teamMemberRepository{pool: pool}
}

func (r *teamMemberRepository) Create(ctx context.Context, member *domain.TeamMember) error {
	const query = `
        INSERT INTO team_members (id, name, email, role, active_tickets, resolved_today, avg_response_mins)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		member.ID,
		member.Name,
		member.Email,
		member.Role,
		member.ActiveTickets,
		member.ResolvedToday,
		member.AvgResponseMins,
	).Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return apperrors.NewPersistenceUnavailable(err)
	}
	return nil
}

func (r *teamMemberRepository) GetByID(ctx context.Context, id string) (*domain.TeamMember, error) {
	const query = `
        SELECT id, name, email, role, active_tickets, resolved_today, avg_response_mins, created_at, updated_at
        FROM team_members WHERE id=$1`
	var member domain.TeamMember
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&member.ID,
		&member.Name,
		&member.Email,
		&member.Role,
		&member.ActiveTickets,
		&member.ResolvedToday,
		&member.AvgResponseMins,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team member", map[string]any{"member_id": id})
		}
		return nil, apperrors.NewPersistenceUnavailable(err)
	}
	return &member, nil
}

func (r *teamMemberRepository) List(ctx context.Context) ([]domain.TeamMember, error) {
	const query = `
        SELECT id, name, email, role, active_tickets, resolved_today, avg_response_mins, created_at, updated_at
        FROM team_members ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewPersistenceUnavailable(err)
	}
	defer rows.Close()

	var members []domain.TeamMember
	for rows.Next() {
		var member domain.TeamMember
		if err := rows.Scan(
			&member.ID,
			&member.Name,
			&member.Email,
			&member.Role,
			&member.ActiveTickets,
			&member.ResolvedToday,
			&member.AvgResponseMins,
			&member.CreatedAt,
			&member.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewPersistenceUnavailable(err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *teamMemberRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM team_members WHERE id=$1`, id)
	if err != nil {
		return apperrors.NewPersistenceUnavailable(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("team member", map[string]any{"member_id": id})
	}
	return nil
}

// AdjustCounters applies counter deltas in one statement so a counter can
// never drift from its committed ticket transition. ActiveTickets is
// floored at zero.
func (r *teamMemberRepository) AdjustCounters(ctx context.Context, id string, activeDelta, resolvedDelta int) error {
	const query = `
        UPDATE team_members
        SET active_tickets = GREATEST(active_tickets + $1, 0),
            resolved_today = GREATEST(resolved_today + $2, 0),
            updated_at = NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, activeDelta, resolvedDelta, id)
	if err != nil {
		return apperrors.NewPersistenceUnavailable(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewNotFound("team member", map[string]any{"member_id": id})
	}
	return nil
}

// ResetResolvedToday zeroes the daily counter, run at day rollover.
func (r *teamMemberRepository) ResetResolvedToday(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `UPDATE team_members SET resolved_today = 0, updated_at = NOW()`); err != nil {
		return apperrors.NewPersistenceUnavailable(err)
	}
	return nil
}
