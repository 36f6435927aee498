package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tixhub/ticket-exchange-service/internal/database"
	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// Inserter inserts outbox events. The db argument may be a pool or an open
// transaction; passing the transaction used for the state change gives the
// transactional write-then-publish guarantee.
type Inserter interface {
	Insert(ctx context.Context, db database.DBTX, event *domain.OutboxEvent) error
}

// PgStore is the PostgreSQL outbox_events table access used by the emitter
// and the processor.
type PgStore struct{}

// Compile-time interface verification.
var _ Inserter = (*PgStore)(nil)

// NewPgStore creates a new outbox store.
func NewPgStore() *PgStore {
	return &PgStore{}
}

// Insert stores an outbox event.
func (s *PgStore) Insert(ctx context.Context, db database.DBTX, event *domain.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("outbox: event cannot be nil")
	}

	query := `
		INSERT INTO outbox_events (event_id, aggregate_id, aggregate_type, event_type, payload, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := db.Exec(ctx, query,
		event.EventID,
		event.AggregateID,
		event.AggregateType,
		event.EventType,
		event.Payload,
		event.Attempts,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("outbox: failed to insert event: %w", err)
	}

	return nil
}

// ClaimPending locks up to limit unpublished events for processing. The lock
// is held by tx; concurrent processors skip each other's claimed rows via
// FOR UPDATE SKIP LOCKED.
func (s *PgStore) ClaimPending(ctx context.Context, tx database.DBTX, limit, maxAttempts int) ([]*domain.OutboxEvent, error) {
	query := `
		SELECT event_id, aggregate_id, aggregate_type, event_type, payload, attempts, created_at
		FROM outbox_events
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND attempts < $1
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("outbox: failed to claim pending events: %w", err)
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var event domain.OutboxEvent
		if err := rows.Scan(
			&event.EventID,
			&event.AggregateID,
			&event.AggregateType,
			&event.EventType,
			&event.Payload,
			&event.Attempts,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("outbox: failed to scan event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outbox: error iterating pending events: %w", err)
	}

	return events, nil
}

// MarkPublished records a successful publish.
func (s *PgStore) MarkPublished(ctx context.Context, tx database.DBTX, eventID uuid.UUID) error {
	query := `UPDATE outbox_events SET published_at = $1 WHERE event_id = $2`

	result, err := tx.Exec(ctx, query, time.Now().UTC(), eventID)
	if err != nil {
		return fmt.Errorf("outbox: failed to mark event published: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("outbox: event %s not found", eventID)
	}

	return nil
}

// RecordFailure increments the attempt counter and stores the publish error.
// When deadLetter is set the event is additionally taken out of rotation.
func (s *PgStore) RecordFailure(ctx context.Context, tx database.DBTX, eventID uuid.UUID, publishErr string, deadLetter bool) error {
	var query string
	if deadLetter {
		query = `
			UPDATE outbox_events
			SET attempts = attempts + 1, last_error = $1, dead_lettered_at = $2
			WHERE event_id = $3`
	} else {
		query = `
			UPDATE outbox_events
			SET attempts = attempts + 1, last_error = $1, updated_at = $2
			WHERE event_id = $3`
	}

	result, err := tx.Exec(ctx, query, publishErr, time.Now().UTC(), eventID)
	if err != nil {
		return fmt.Errorf("outbox: failed to record publish failure: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("outbox: event %s not found", eventID)
	}

	return nil
}

// PendingCount reports how many events are waiting to be published.
func (s *PgStore) PendingCount(ctx context.Context, db database.DBTX) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM outbox_events
		WHERE published_at IS NULL AND dead_lettered_at IS NULL`

	var count int64
	if err := db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("outbox: failed to count pending events: %w", err)
	}

	return count, nil
}
