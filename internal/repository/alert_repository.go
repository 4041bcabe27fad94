package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logic-legends/triage-service/internal/domain"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// AlertRepository reads proactive alerts. Alerts are written by external
// monitoring; the core consumes them read-only.
type AlertRepository interface {
	ListActive(ctx context.Context) ([]domain.ProactiveAlert, error)
	List(ctx context.Context, limit int) ([]domain.ProactiveAlert, error)
}

type alertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository instantiates the repository.
func NewAlertRepository(pool *pgxpool.Pool) AlertRepository {
	return &alertRepository{pool: pool}
}

const alertColumns = `id, type, title, description, severity, affected_users, action,
               prevented_tickets, created_at, resolved_at`

func (r *alertRepository) ListActive(ctx context.Context) ([]domain.ProactiveAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM proactive_alerts WHERE resolved_at IS NULL ORDER BY created_at DESC`
	return r.fetch(ctx, query)
}

func (r *alertRepository) List(ctx context.Context, limit int) ([]domain.ProactiveAlert, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + alertColumns + ` FROM proactive_alerts ORDER BY created_at DESC LIMIT $1`
	return r.fetch(ctx, query, limit)
}

func (r *alertRepository) fetch(ctx context.Context, query string, args ...any) ([]domain.ProactiveAlert, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceUnavailable(err)
	}
	defer rows.Close()

	var alerts []domain.ProactiveAlert
	for rows.Next() {
		var alert domain.ProactiveAlert
		if err := rows.Scan(
			&alert.ID,
			&alert.Type,
			&alert.Title,
			&alert.Description,
			&alert.Severity,
			&alert.AffectedUsers,
			&alert.Action,
			&alert.PreventedTickets,
			&alert.CreatedAt,
			&alert.ResolvedAt,
		); err != nil {
			return nil, apperrors.NewPersistenceUnavailable(err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}
