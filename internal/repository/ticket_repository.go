package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// TicketRepository handles resale ticket persistence and lifecycle management.
type TicketRepository interface {
	// Create inserts a new ticket.
	// The ticket must have a valid ID and SellerID.
	// Returns domain.ErrAlreadyExists if a ticket with the same ID already exists.
	// Returns domain.ErrInvalidInput if required fields are missing.
	Create(ctx context.Context, ticket *domain.Ticket) error

	// Get retrieves a ticket by its ID.
	// Returns domain.ErrNotFound if no matching ticket exists.
	Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)

	// List retrieves tickets matching the filter criteria.
	// Returns the matching tickets and total count for pagination.
	// The total count reflects all matching records regardless of limit/offset.
	List(ctx context.Context, filter TicketFilter) ([]*domain.Ticket, int64, error)

	// ListAll retrieves every stored ticket. Used by duplicate detection,
	// which compares a submission against the full collection.
	ListAll(ctx context.Context) ([]*domain.Ticket, error)

	// UpdateStatus transitions a ticket to a new status. The rejection reason
	// is stored only when transitioning to rejected.
	// Returns domain.ErrNotFound if no matching ticket exists.
	// Returns domain.ErrInvalidInput on a disallowed transition.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TicketStatus, rejectedFor string) error

	// SetConcert links a ticket to a matched concert.
	// Returns domain.ErrNotFound if no matching ticket exists.
	SetConcert(ctx context.Context, id uuid.UUID, concertID uuid.UUID) error

	// SetExtraction stores the extraction result for a ticket.
	// Returns domain.ErrNotFound if no matching ticket exists.
	SetExtraction(ctx context.Context, id uuid.UUID, extraction *domain.ExtractedFields) error
}

// TicketFilter specifies criteria for listing tickets.
type TicketFilter struct {
	// SellerID filters by seller (optional).
	SellerID string

	// ConcertID filters by linked concert (optional).
	ConcertID *uuid.UUID

	// Status filters by one or more ticket statuses (optional).
	// When multiple statuses are provided, tickets matching any status are returned.
	Status []domain.TicketStatus

	// CreatedAfter filters to tickets created after this timestamp (optional).
	CreatedAfter *time.Time

	// CreatedBefore filters to tickets created before this timestamp (optional).
	CreatedBefore *time.Time

	// Limit specifies maximum number of results (default: 100, max: 1000).
	Limit int

	// Offset specifies the starting position for pagination.
	Offset int
}

// Validate checks filter values and sets pagination defaults.
func (f *TicketFilter) Validate() error {
	for _, s := range f.Status {
		if !domain.IsValidTicketStatus(s) {
			return domain.NewValidationError("status", "unknown ticket status: "+string(s))
		}
	}
	applyPaginationDefaults(&f.Limit, &f.Offset)
	return nil
}
