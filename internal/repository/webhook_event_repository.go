package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// webhookEventRepository implements WebhookEventRepository using PostgreSQL.
type webhookEventRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWebhookEventRepository creates a new PostgreSQL-backed webhook event repository.
func NewWebhookEventRepository(pool *pgxpool.Pool, logger zerolog.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "webhook_event").Logger(),
	}
}

// MarkProcessed records a gateway event ID inside the caller's
// transaction. The primary key on event_id makes the insert a no-op on
// replay, which is how duplicate webhook deliveries are dropped.
func (r *webhookEventRepository) MarkProcessed(ctx context.Context, tx pgx.Tx, eventID string, userID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_id, user_id, processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, eventID, userID, time.Now())
	if err != nil {
		r.logger.Error().Err(err).Str("event_id", eventID).Msg("failed to record webhook event")
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}

	first := tag.RowsAffected() > 0
	if !first {
		r.logger.Info().Str("event_id", eventID).Msg("webhook event already processed")
	}

	return first, nil
}
