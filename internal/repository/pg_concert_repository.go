package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

const concertColumns = `id, artist, venue, event_date, event_time,
		price_cents, status, created_at, updated_at`

// Compile-time interface verification.
var _ ConcertRepository = (*PgConcertRepository)(nil)

// PgConcertRepository is a PostgreSQL implementation of ConcertRepository.
type PgConcertRepository struct {
	db DBTX
}

// NewPgConcertRepository creates a new PostgreSQL concert repository.
func NewPgConcertRepository(db DBTX) *PgConcertRepository {
	return &PgConcertRepository{db: db}
}

// Create inserts a new concert.
func (r *PgConcertRepository) Create(ctx context.Context, concert *domain.Concert) error {
	if concert == nil {
		return domain.NewValidationError("concert", "concert cannot be nil")
	}
	if concert.ID == uuid.Nil {
		return domain.NewValidationError("id", "concert ID is required")
	}
	if concert.Artist == "" {
		return domain.NewValidationError("artist", "artist is required")
	}
	if concert.Venue == "" {
		return domain.NewValidationError("venue", "venue is required")
	}

	query := `
		INSERT INTO concerts (
			id, artist, venue, event_date, event_time,
			price_cents, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)`

	_, err := r.db.Exec(ctx, query,
		concert.ID, concert.Artist, concert.Venue, concert.EventDate, concert.EventTime,
		concert.PriceCents, concert.Status, concert.CreatedAt, concert.UpdatedAt,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("concert", concert.ID.String())
		}
		return fmt.Errorf("failed to create concert: %w", err)
	}

	return nil
}

// Get retrieves a concert by its ID.
func (r *PgConcertRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Concert, error) {
	query := fmt.Sprintf(`SELECT %s FROM concerts WHERE id = $1`, concertColumns)

	var concert domain.Concert
	err := r.db.QueryRow(ctx, query, id).Scan(
		&concert.ID, &concert.Artist, &concert.Venue, &concert.EventDate, &concert.EventTime,
		&concert.PriceCents, &concert.Status, &concert.CreatedAt, &concert.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("concert", id.String())
		}
		return nil, fmt.Errorf("failed to get concert: %w", err)
	}

	return &concert, nil
}

// List retrieves concerts matching the filter criteria.
func (r *PgConcertRepository) List(ctx context.Context, filter ConcertFilter) ([]*domain.Concert, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.EventDate != "" {
		conditions = append(conditions, fmt.Sprintf("event_date = $%d", argIndex))
		args = append(args, filter.EventDate)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM concerts WHERE %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count concerts: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM concerts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		concertColumns, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list concerts: %w", err)
	}
	defer rows.Close()

	concerts, err := collectConcerts(rows)
	if err != nil {
		return nil, 0, err
	}

	return concerts, totalCount, nil
}

// ListUpcoming retrieves every concert open for ticket listings.
func (r *PgConcertRepository) ListUpcoming(ctx context.Context) ([]*domain.Concert, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM concerts
		WHERE status = $1
		ORDER BY event_date ASC, artist ASC`, concertColumns)

	rows, err := r.db.Query(ctx, query, domain.ConcertStatusUpcoming)
	if err != nil {
		return nil, fmt.Errorf("failed to list active concerts: %w", err)
	}
	defer rows.Close()

	return collectConcerts(rows)
}

// UpdateStatus transitions a concert to a new status.
func (r *PgConcertRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ConcertStatus) error {
	query := `
		UPDATE concerts
		SET status = $1, updated_at = $2
		WHERE id = $3`

	result, err := r.db.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update concert status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("concert", id.String())
	}

	return nil
}

// collectConcerts scans all rows into concerts.
func collectConcerts(rows pgx.Rows) ([]*domain.Concert, error) {
	var concerts []*domain.Concert
	for rows.Next() {
		var concert domain.Concert
		err := rows.Scan(
			&concert.ID, &concert.Artist, &concert.Venue, &concert.EventDate, &concert.EventTime,
			&concert.PriceCents, &concert.Status, &concert.CreatedAt, &concert.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan concert: %w", err)
		}
		concerts = append(concerts, &concert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating concerts: %w", err)
	}

	return concerts, nil
}
