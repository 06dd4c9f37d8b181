package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/domain"
)

const ticketColumns = `id, title, description, status, priority, created_by, assigned_to, ai_response, created_at, updated_at`

// PostgresTicketStore persists tickets in the tickets table. The seq column
// records insertion order; filtering runs in Go over rows read in seq order
// so it behaves exactly like the in-memory store. Ticket ids draw from the
// separate ticket_id_counter sequence, which seeding leaves untouched.
type PostgresTicketStore struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

// NewPostgresTicketStore instantiates the store.
func NewPostgresTicketStore(pool *pgxpool.Pool, clk clock.Clock) *PostgresTicketStore {
	if clk == nil {
		clk = clock.Real()
	}
	return &PostgresTicketStore{pool: pool, clock: clk}
}

// Seed inserts preloaded tickets unless a ticket with the same id exists.
func (r *PostgresTicketStore) Seed(ctx context.Context, tickets ...domain.Ticket) error {
	const query = `
        INSERT INTO tickets (` + ticketColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (id) DO NOTHING`
	for _, ticket := range tickets {
		if ticket.CreatedAt.IsZero() {
			ticket.CreatedAt = storeTime(r.clock.Now())
		}
		ticket.UpdatedAt = refreshedAt(ticket.UpdatedAt, ticket.CreatedAt)
		if _, err := r.pool.Exec(ctx, query, ticketArgs(ticket)...); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresTicketStore) Insert(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Ticket{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var counter int64
	if err := tx.QueryRow(ctx, `SELECT nextval('ticket_id_counter')`).Scan(&counter); err != nil {
		return domain.Ticket{}, err
	}

	now := storeTime(r.clock.Now())
	ticket.ID = formatTicketID(counter, now)
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	const query = `
        INSERT INTO tickets (` + ticketColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	if _, err := tx.Exec(ctx, query, ticketArgs(ticket)...); err != nil {
		return domain.Ticket{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

func (r *PostgresTicketStore) FindByID(ctx context.Context, id string) (domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Ticket{}, ErrTicketNotFound
	}
	return ticket, err
}

// Update locks the row, merges the patch in Go and writes it back.
func (r *PostgresTicketStore) Update(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Ticket{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 FOR UPDATE`
	ticket, err := scanTicket(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Ticket{}, ErrTicketNotFound
	}
	if err != nil {
		return domain.Ticket{}, err
	}

	patch.Apply(&ticket)
	ticket.UpdatedAt = refreshedAt(storeTime(r.clock.Now()), ticket.CreatedAt)

	const update = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, assigned_to=$5, updated_at=$6
        WHERE id=$7`
	cmd, err := tx.Exec(ctx, update,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTo,
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return domain.Ticket{}, err
	}
	if cmd.RowsAffected() == 0 {
		return domain.Ticket{}, ErrTicketNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

func (r *PostgresTicketStore) List(ctx context.Context, pred TicketPredicate) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	all, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return all, nil
	}
	result := make([]domain.Ticket, 0, len(all))
	for _, ticket := range all {
		if pred(ticket) {
			result = append(result, ticket)
		}
	}
	return result, nil
}

func ticketArgs(ticket domain.Ticket) []any {
	return []any{
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.AIResponse,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	}
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.AIResponse,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return domain.Ticket{}, err
	}
	ticket.CreatedAt = ticket.CreatedAt.UTC()
	ticket.UpdatedAt = ticket.UpdatedAt.UTC()
	return ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
