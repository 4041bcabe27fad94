package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/store"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

const ticketColumns = `id, title, description, category, priority, sentiment, waste_category,
               status, source, assigned_to, customer_name, customer_email, customer_phone,
               carbon_footprint, voice_recording, auto_resolved, created_at, updated_at`

// TicketRepository is the Postgres-backed persistence collaborator for
// the ticket store.
type TicketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

// Insert persists a new ticket row. Identity and timestamps are assigned
// by the store, never by the database or the client.
func (r *TicketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, category, priority, sentiment, waste_category,
            status, source, assigned_to, customer_name, customer_email, customer_phone,
            carbon_footprint, voice_recording, auto_resolved, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Sentiment,
		ticket.WasteCategory,
		ticket.Status,
		ticket.Source,
		ticket.AssignedTo,
		ticket.Customer.Name,
		ticket.Customer.Email,
		ticket.Customer.Phone,
		ticket.CarbonFootprint,
		ticket.VoiceRecording,
		ticket.AutoResolved,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewPersistenceUnavailable(err)
	}
	return nil
}

// Get fetches a ticket by id.
func (r *TicketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.NewPersistenceUnavailable(err)
	}
	return ticket, nil
}

// Apply replaces the row while its status still equals expectedStatus.
// The guard keeps concurrent processes from committing a move the state
// machine validated against a stale status.
func (r *TicketRepository) Apply(ctx context.Context, ticket *domain.Ticket, expectedStatus domain.TicketStatus) (bool, error) {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, priority=$4, sentiment=$5,
            waste_category=$6, status=$7, assigned_to=$8, carbon_footprint=$9,
            auto_resolved=$10, updated_at=$11
        WHERE id=$12 AND status=$13`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Sentiment,
		ticket.WasteCategory,
		ticket.Status,
		ticket.AssignedTo,
		ticket.CarbonFootprint,
		ticket.AutoResolved,
		ticket.UpdatedAt,
		ticket.ID,
		expectedStatus,
	)
	if err != nil {
		return false, apperrors.NewPersistenceUnavailable(err)
	}
	return cmd.RowsAffected() > 0, nil
}

// List returns tickets matching the filter in the requested order.
func (r *TicketRepository) List(ctx context.Context, filter store.Filter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, priority := range filter.Priorities {
			args = append(args, priority)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Sources) > 0 {
		placeholders := make([]string, len(filter.Sources))
		for i, source := range filter.Sources {
			args = append(args, source)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("source IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}

	orderBy := "created_at DESC, id ASC"
	switch filter.SortBy {
	case store.SortByUpdatedAt:
		orderBy = "updated_at DESC, id ASC"
	case store.SortByPriority:
		// priority weight: priority=3 > moderate=2 > normal=1
		orderBy = "CASE priority WHEN 'priority' THEN 3 WHEN 'moderate' THEN 2 ELSE 1 END DESC, id ASC"
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s`,
		base, strings.Join(clauses, " AND "), orderBy)
	if filter.Limit > 0 {
		// Limit <= 0 means the full set; feed snapshots and analytics
		// rely on unbounded queries.
		query = fmt.Sprintf("%s LIMIT %d", query, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceUnavailable(err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Sentiment,
		&ticket.WasteCategory,
		&ticket.Status,
		&ticket.Source,
		&ticket.AssignedTo,
		&ticket.Customer.Name,
		&ticket.Customer.Email,
		&ticket.Customer.Phone,
		&ticket.CarbonFootprint,
		&ticket.VoiceRecording,
		&ticket.AutoResolved,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceUnavailable(err)
		}
		result = append(result, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceUnavailable(err)
	}
	return result, nil
}
