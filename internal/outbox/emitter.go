// Package outbox implements transactional event publishing. State changes
// write their events to the outbox_events table in the same transaction; a
// background processor relays unpublished rows to Kafka and retries transient
// failures, dead-lettering events that exhaust their attempts.
package outbox

import (
	"context"
	"fmt"

	"github.com/tixhub/ticket-exchange-service/internal/database"
	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

const defaultServiceName = "ticket-exchange-service"

// EmitterConfig configures the Emitter with service context.
type EmitterConfig struct {
	// ServiceName identifies the source service in event metadata.
	ServiceName string
}

// Emitter builds and stores outbox events for ticket lifecycle changes.
type Emitter struct {
	config EmitterConfig
	store  Inserter
}

// NewEmitter creates a new Emitter writing through the given store.
func NewEmitter(config EmitterConfig, store Inserter) *Emitter {
	if config.ServiceName == "" {
		config.ServiceName = defaultServiceName
	}
	return &Emitter{config: config, store: store}
}

// Emit builds an outbox event and inserts it via db. Pass the transaction of
// the state change being announced so both commit or roll back together.
func (e *Emitter) Emit(ctx context.Context, db database.DBTX, eventType, aggregateID, aggregateType string, payload interface{}) error {
	if aggregateID == "" {
		return fmt.Errorf("outbox: aggregate_id is required")
	}
	if eventType == "" {
		return fmt.Errorf("outbox: event_type is required")
	}

	event, err := domain.NewOutboxEvent(eventType, aggregateID, aggregateType, payload)
	if err != nil {
		return fmt.Errorf("outbox: failed to build %s event: %w", eventType, err)
	}

	return e.store.Insert(ctx, db, event)
}

// EmitTicketSubmitted announces an accepted ticket submission.
func (e *Emitter) EmitTicketSubmitted(ctx context.Context, db database.DBTX, payload domain.TicketSubmittedPayload) error {
	return e.Emit(ctx, db, domain.EventTypeTicketSubmitted, payload.TicketID.String(), domain.AggregateTypeTicket, payload)
}

// EmitTicketDuplicateRejected announces a submission rejected as a duplicate.
// The aggregate is the existing ticket the submission collided with.
func (e *Emitter) EmitTicketDuplicateRejected(ctx context.Context, db database.DBTX, payload domain.TicketDuplicateRejectedPayload) error {
	return e.Emit(ctx, db, domain.EventTypeTicketDuplicateRejected, payload.ExistingID.String(), domain.AggregateTypeTicket, payload)
}

// EmitTicketStatusChanged announces an approve, reject or sold transition.
func (e *Emitter) EmitTicketStatusChanged(ctx context.Context, db database.DBTX, payload domain.TicketStatusChangedPayload) error {
	var eventType string
	switch payload.Status {
	case domain.TicketStatusApproved:
		eventType = domain.EventTypeTicketApproved
	case domain.TicketStatusRejected:
		eventType = domain.EventTypeTicketRejected
	case domain.TicketStatusSold:
		eventType = domain.EventTypeTicketSold
	default:
		return fmt.Errorf("outbox: no event type for ticket status %q", payload.Status)
	}
	return e.Emit(ctx, db, eventType, payload.TicketID.String(), domain.AggregateTypeTicket, payload)
}

// EmitConcertCreated announces a new concert in the catalog.
func (e *Emitter) EmitConcertCreated(ctx context.Context, db database.DBTX, payload domain.ConcertCreatedPayload) error {
	return e.Emit(ctx, db, domain.EventTypeConcertCreated, payload.ConcertID.String(), domain.AggregateTypeConcert, payload)
}

// EmitAliasAdded announces a new artist alias. The canonical name is the
// aggregate.
func (e *Emitter) EmitAliasAdded(ctx context.Context, db database.DBTX, payload domain.AliasAddedPayload) error {
	return e.Emit(ctx, db, domain.EventTypeAliasAdded, payload.Canonical, domain.AggregateTypeAlias, payload)
}
