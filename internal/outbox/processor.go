package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/tixhub/ticket-exchange-service/internal/database"
	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/observability"
)

// Default values for the outbox processor.
const (
	defaultPollInterval = 5 * time.Second
	defaultBatchSize    = 50
	defaultMaxRetries   = 5
)

// ProcessorConfig configures the background outbox relay.
type ProcessorConfig struct {
	// PollInterval is how often the processor looks for pending events.
	PollInterval time.Duration
	// BatchSize is the maximum number of events claimed per poll.
	BatchSize int
	// MaxRetries is the number of publish attempts before dead-lettering.
	MaxRetries int
}

// TxRunner runs a function inside a database transaction. database.DB
// satisfies it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Compile-time interface verification.
var _ TxRunner = (*database.DB)(nil)

// Processor relays outbox events to Kafka. Multiple processors may run
// concurrently against the same table; row claims use FOR UPDATE SKIP LOCKED
// so they never publish the same event twice.
type Processor struct {
	db      TxRunner
	store   *PgStore
	writer  MessageWriter
	config  ProcessorConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewProcessor creates a new outbox processor.
func NewProcessor(db TxRunner, store *PgStore, writer MessageWriter, cfg ProcessorConfig, logger zerolog.Logger, metrics *observability.Metrics) *Processor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}

	return &Processor{
		db:      db,
		store:   store,
		writer:  writer,
		config:  cfg,
		logger:  logger.With().Str("component", "outbox-processor").Logger(),
		metrics: metrics,
	}
}

// Run polls for pending events until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	p.logger.Info().
		Dur("poll_interval", p.config.PollInterval).
		Int("batch_size", p.config.BatchSize).
		Int("max_retries", p.config.MaxRetries).
		Msg("outbox processor started")

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("outbox processor stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error().Err(err).Msg("outbox batch failed")
			}
		}
	}
}

// ProcessBatch claims one batch of pending events, publishes them and records
// the outcome. Claim and outcome share a transaction so a crash mid-batch
// releases the claim untouched.
func (p *Processor) ProcessBatch(ctx context.Context) error {
	start := time.Now()

	var published, failed int
	err := p.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		events, err := p.store.ClaimPending(ctx, tx, p.config.BatchSize, p.config.MaxRetries)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		for _, event := range events {
			if err := p.publishEvent(ctx, event); err != nil {
				failed++
				deadLetter := event.Attempts+1 >= p.config.MaxRetries
				if recErr := p.store.RecordFailure(ctx, tx, event.EventID, err.Error(), deadLetter); recErr != nil {
					return recErr
				}

				logEvent := p.logger.Warn()
				if deadLetter {
					logEvent = p.logger.Error().Bool("dead_lettered", true)
					if p.metrics != nil {
						p.metrics.RecordOutboxDeadLettered()
					}
				}
				logEvent.Err(err).
					Str("event_id", event.EventID.String()).
					Str("event_type", event.EventType).
					Int("attempts", event.Attempts+1).
					Msg("outbox event publish failed")

				if p.metrics != nil {
					p.metrics.RecordOutboxFailed()
				}
				continue
			}

			if err := p.store.MarkPublished(ctx, tx, event.EventID); err != nil {
				return err
			}
			published++
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("outbox: batch processing failed: %w", err)
	}

	if p.metrics != nil {
		p.metrics.RecordOutboxBatch(time.Since(start).Seconds())
		if published > 0 {
			p.metrics.RecordOutboxPublished(published)
		}
	}

	if published > 0 || failed > 0 {
		p.logger.Debug().
			Int("published", published).
			Int("failed", failed).
			Dur("duration", time.Since(start)).
			Msg("outbox batch processed")
	}

	return nil
}

// publishEvent writes one event to Kafka, keyed by aggregate ID.
func (p *Processor) publishEvent(ctx context.Context, event *domain.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		},
		Time: event.CreatedAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to kafka: %w", err)
	}

	return nil
}
