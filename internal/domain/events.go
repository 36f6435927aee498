package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type constants for outbox events.
const (
	EventTypeTicketSubmitted         = "ticket.submitted"
	EventTypeTicketDuplicateRejected = "ticket.duplicate_rejected"
	EventTypeTicketApproved          = "ticket.approved"
	EventTypeTicketRejected          = "ticket.rejected"
	EventTypeTicketSold              = "ticket.sold"
	EventTypeConcertCreated          = "concert.created"
	EventTypeAliasAdded              = "alias.added"
)

// Aggregate type constants for outbox events.
const (
	AggregateTypeTicket  = "ticket"
	AggregateTypeConcert = "concert"
	AggregateTypeAlias   = "artist_alias"
)

// OutboxEvent represents an event to be published via the outbox pattern.
type OutboxEvent struct {
	EventID       uuid.UUID
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       []byte
	Attempts      int
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// NewOutboxEvent creates a new outbox event with the given parameters.
// The payload is JSON-serialized automatically.
func NewOutboxEvent(eventType, aggregateID, aggregateType string, payload interface{}) (*OutboxEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:       uuid.New(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payloadBytes,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// TicketSubmittedPayload is the payload for ticket.submitted events.
type TicketSubmittedPayload struct {
	TicketID   uuid.UUID  `json:"ticket_id"`
	ConcertID  *uuid.UUID `json:"concert_id,omitempty"`
	SellerID   string     `json:"seller_id"`
	Artist     string     `json:"artist"`
	Venue      string     `json:"venue"`
	EventDate  string     `json:"event_date"`
	PriceCents int64      `json:"price_cents"`
}

// TicketDuplicateRejectedPayload is the payload for ticket.duplicate_rejected events.
type TicketDuplicateRejectedPayload struct {
	SellerID   string             `json:"seller_id"`
	MatchType  DuplicateMatchType `json:"match_type"`
	ExistingID uuid.UUID          `json:"existing_id"`
	Artist     string             `json:"artist"`
	Venue      string             `json:"venue"`
	EventDate  string             `json:"event_date"`
}

// TicketStatusChangedPayload is the payload for ticket.approved, ticket.rejected
// and ticket.sold events.
type TicketStatusChangedPayload struct {
	TicketID  uuid.UUID    `json:"ticket_id"`
	Status    TicketStatus `json:"status"`
	ChangedBy string       `json:"changed_by"`
	Reason    string       `json:"reason,omitempty"`
}

// ConcertCreatedPayload is the payload for concert.created events.
type ConcertCreatedPayload struct {
	ConcertID uuid.UUID `json:"concert_id"`
	Artist    string    `json:"artist"`
	Venue     string    `json:"venue"`
	EventDate string    `json:"event_date"`
}

// AliasAddedPayload is the payload for alias.added events.
type AliasAddedPayload struct {
	Canonical string `json:"canonical"`
	Alias     string `json:"alias"`
	AddedBy   string `json:"added_by"`
}
