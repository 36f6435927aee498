package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of kafka.Writer the processor needs. kafka-go's
// Writer satisfies it directly.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// WriterConfig holds the parameters needed to create a Kafka writer.
// This is defined in the outbox package to avoid importing the config package.
type WriterConfig struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string
	// Topic is the topic outbox events are published to.
	Topic string
	// BatchSize is the maximum number of messages batched before sending.
	BatchSize int
	// BatchTimeout is how long a partial batch waits before being sent.
	BatchTimeout time.Duration
}

// NewKafkaWriter creates a kafka.Writer for outbox event publishing. Messages
// are keyed by aggregate ID so events for one ticket stay ordered within a
// partition.
func NewKafkaWriter(cfg WriterConfig) *kafka.Writer {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 50 * time.Millisecond
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    batchSize,
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
}
