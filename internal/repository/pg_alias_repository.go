package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// Compile-time interface verification.
var _ AliasRepository = (*PgAliasRepository)(nil)

// PgAliasRepository is a PostgreSQL implementation of AliasRepository.
type PgAliasRepository struct {
	db DBTX
}

// NewPgAliasRepository creates a new PostgreSQL alias repository.
func NewPgAliasRepository(db DBTX) *PgAliasRepository {
	return &PgAliasRepository{db: db}
}

// Upsert stores an alias group, replacing the alias set for an existing canonical name.
func (r *PgAliasRepository) Upsert(ctx context.Context, alias *domain.ArtistAlias) error {
	if alias == nil {
		return domain.NewValidationError("alias", "alias cannot be nil")
	}
	if alias.Canonical == "" {
		return domain.NewValidationError("canonical", "canonical name is required")
	}

	aliasesJSON, err := json.Marshal(alias.Aliases)
	if err != nil {
		return fmt.Errorf("failed to marshal aliases: %w", err)
	}

	query := `
		INSERT INTO artist_aliases (canonical, aliases, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (canonical) DO UPDATE
		SET aliases = EXCLUDED.aliases, updated_at = EXCLUDED.updated_at`

	_, err = r.db.Exec(ctx, query, alias.Canonical, aliasesJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert alias group: %w", err)
	}

	return nil
}

// Get retrieves the alias group for a canonical name.
func (r *PgAliasRepository) Get(ctx context.Context, canonical string) (*domain.ArtistAlias, error) {
	query := `SELECT canonical, aliases, updated_at FROM artist_aliases WHERE canonical = $1`

	var alias domain.ArtistAlias
	var aliasesJSON []byte
	err := r.db.QueryRow(ctx, query, canonical).Scan(&alias.Canonical, &aliasesJSON, &alias.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("alias", canonical)
		}
		return nil, fmt.Errorf("failed to get alias group: %w", err)
	}

	if len(aliasesJSON) > 0 {
		if err := json.Unmarshal(aliasesJSON, &alias.Aliases); err != nil {
			return nil, fmt.Errorf("failed to unmarshal aliases: %w", err)
		}
	}

	return &alias, nil
}

// GetAll retrieves all alias groups keyed by canonical name.
func (r *PgAliasRepository) GetAll(ctx context.Context) (map[string][]string, error) {
	query := `SELECT canonical, aliases FROM artist_aliases ORDER BY canonical ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alias groups: %w", err)
	}
	defer rows.Close()

	groups := make(map[string][]string)
	for rows.Next() {
		var canonical string
		var aliasesJSON []byte
		if err := rows.Scan(&canonical, &aliasesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan alias group: %w", err)
		}

		var aliases []string
		if len(aliasesJSON) > 0 {
			if err := json.Unmarshal(aliasesJSON, &aliases); err != nil {
				return nil, fmt.Errorf("failed to unmarshal aliases for %q: %w", canonical, err)
			}
		}
		groups[canonical] = aliases
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alias groups: %w", err)
	}

	return groups, nil
}

// Delete removes an alias group.
func (r *PgAliasRepository) Delete(ctx context.Context, canonical string) error {
	query := `DELETE FROM artist_aliases WHERE canonical = $1`

	result, err := r.db.Exec(ctx, query, canonical)
	if err != nil {
		return fmt.Errorf("failed to delete alias group: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("alias", canonical)
	}

	return nil
}
