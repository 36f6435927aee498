package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// ConcertRepository handles the concert catalog used for ticket matching.
type ConcertRepository interface {
	// Create inserts a new concert.
	// Returns domain.ErrAlreadyExists if a concert with the same ID already exists.
	// Returns domain.ErrInvalidInput if required fields are missing.
	Create(ctx context.Context, concert *domain.Concert) error

	// Get retrieves a concert by its ID.
	// Returns domain.ErrNotFound if no matching concert exists.
	Get(ctx context.Context, id uuid.UUID) (*domain.Concert, error)

	// List retrieves concerts matching the filter criteria.
	// Returns the matching concerts and total count for pagination.
	List(ctx context.Context, filter ConcertFilter) ([]*domain.Concert, int64, error)

	// ListUpcoming retrieves every concert open for ticket listings.
	// Used by concert matching, which scores a submitted artist name against
	// the full upcoming catalog.
	ListUpcoming(ctx context.Context) ([]*domain.Concert, error)

	// UpdateStatus transitions a concert to a new status.
	// Returns domain.ErrNotFound if no matching concert exists.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ConcertStatus) error
}

// ConcertFilter specifies criteria for listing concerts.
type ConcertFilter struct {
	// Status filters by concert status (optional).
	Status domain.ConcertStatus

	// EventDate filters by exact event date in DD.MM.YYYY form (optional).
	EventDate string

	// Limit specifies maximum number of results (default: 100, max: 1000).
	Limit int

	// Offset specifies the starting position for pagination.
	Offset int
}

// Validate checks filter values and sets pagination defaults.
func (f *ConcertFilter) Validate() error {
	applyPaginationDefaults(&f.Limit, &f.Offset)
	return nil
}
