package repository

import (
	"context"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// AliasRepository handles operator-curated artist alias groups.
//
// Each row maps a canonical artist spelling to the set of alternative
// spellings treated as the same artist. The matcher loads the full table as a
// supplementary alias source on top of its built-in groups.
type AliasRepository interface {
	// Upsert stores an alias group, replacing the alias set for an existing
	// canonical name.
	// Returns domain.ErrInvalidInput if the canonical name is empty.
	Upsert(ctx context.Context, alias *domain.ArtistAlias) error

	// Get retrieves the alias group for a canonical name.
	// Returns domain.ErrNotFound if no group exists.
	Get(ctx context.Context, canonical string) (*domain.ArtistAlias, error)

	// GetAll retrieves all alias groups keyed by canonical name.
	GetAll(ctx context.Context) (map[string][]string, error)

	// Delete removes an alias group.
	// Returns domain.ErrNotFound if no group exists.
	Delete(ctx context.Context, canonical string) error
}
