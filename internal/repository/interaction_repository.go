package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// InteractionRepository logs assistant/bot session steps.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.ChatInteraction) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.ChatInteraction, error)
}

type interactionRepository struct {
	pool *pgxpool.Pool
}

// NewInteractionRepository instantiates repository.
func NewInteractionRepository(pool *pgxpool.Pool) InteractionRepository {
	return &interactionRepository{pool: pool}
}

func (r *interactionRepository) Create(ctx context.Context, interaction *domain.ChatInteraction) error {
	const query = `
        INSERT INTO chat_interactions (session_id, username, action_type, action_value, bot_response)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		interaction.SessionID,
		interaction.Username,
		interaction.ActionType,
		interaction.ActionValue,
		interaction.BotResponse,
	).Scan(&interaction.ID, &interaction.CreatedAt)
}

func (r *interactionRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.ChatInteraction, error) {
	const query = `
        SELECT id, session_id, username, action_type, action_value, bot_response, created_at
        FROM chat_interactions WHERE session_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatInteraction
	for rows.Next() {
		var entry domain.ChatInteraction
		if err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&entry.Username,
			&entry.ActionType,
			&entry.ActionValue,
			&entry.BotResponse,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
