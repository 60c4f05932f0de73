package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByPublicID(ctx context.Context, publicID string) (*domain.Ticket, error)
	ListByRequester(ctx context.Context, username string) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, publicID string, status domain.TicketStatus) error
	UpdateAssignee(ctx context.Context, publicID, admin string) error
	UpdateRequester(ctx context.Context, publicID, username string) error
	UpdateRating(ctx context.Context, publicID string, rating int) error
	// OpenCountsByAssignee tallies non-terminal tickets per assigned
	// administrator. Administrators with no open tickets do not appear.
	OpenCountsByAssignee(ctx context.Context) (map[string]int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, public_id, subject, category, description, status,
        requester_name, requester_code, assigned_to, preferred_admin, rating,
        created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (public_id, subject, category, description, status,
            requester_name, requester_code, assigned_to, preferred_admin)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.PublicID,
		ticket.Subject,
		ticket.Category,
		ticket.Description,
		ticket.Status,
		ticket.RequesterName,
		ticket.RequesterCode,
		ticket.AssignedTo,
		ticket.PreferredAdmin,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE public_id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, publicID).Scan(
		&ticket.ID,
		&ticket.PublicID,
		&ticket.Subject,
		&ticket.Category,
		&ticket.Description,
		&ticket.Status,
		&ticket.RequesterName,
		&ticket.RequesterCode,
		&ticket.AssignedTo,
		&ticket.PreferredAdmin,
		&ticket.Rating,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByRequester(ctx context.Context, username string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE requester_name=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, publicID string, status domain.TicketStatus) error {
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE public_id=$2`
	return r.execOne(ctx, query, status, publicID)
}

func (r *ticketRepository) UpdateAssignee(ctx context.Context, publicID, admin string) error {
	const query = `UPDATE tickets SET assigned_to=$1, updated_at=NOW() WHERE public_id=$2`
	return r.execOne(ctx, query, admin, publicID)
}

func (r *ticketRepository) UpdateRequester(ctx context.Context, publicID, username string) error {
	const query = `UPDATE tickets SET requester_name=$1, updated_at=NOW() WHERE public_id=$2`
	return r.execOne(ctx, query, username, publicID)
}

func (r *ticketRepository) UpdateRating(ctx context.Context, publicID string, rating int) error {
	const query = `UPDATE tickets SET rating=$1, updated_at=NOW() WHERE public_id=$2`
	return r.execOne(ctx, query, rating, publicID)
}

func (r *ticketRepository) OpenCountsByAssignee(ctx context.Context) (map[string]int, error) {
	const query = `
        SELECT assigned_to, COUNT(*)
        FROM tickets
        WHERE status <> 'FN' AND assigned_to IS NOT NULL
        GROUP BY assigned_to`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var assignee string
		var count int
		if err := rows.Scan(&assignee, &count); err != nil {
			return nil, err
		}
		counts[assignee] = count
	}
	return counts, rows.Err()
}

func (r *ticketRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.PublicID,
			&ticket.Subject,
			&ticket.Category,
			&ticket.Description,
			&ticket.Status,
			&ticket.RequesterName,
			&ticket.RequesterCode,
			&ticket.AssignedTo,
			&ticket.PreferredAdmin,
			&ticket.Rating,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
