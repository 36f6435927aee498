package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// validTicketTransitions defines the allowed status transitions for tickets.
// This is a package-level variable to avoid re-allocating on every call.
var validTicketTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusPendingReview: {
		domain.TicketStatusApproved,
		domain.TicketStatusRejected,
	},
	domain.TicketStatusApproved: {
		domain.TicketStatusSold,
		domain.TicketStatusRejected,
	},
}

const ticketColumns = `id, concert_id, seller_id, artist, venue,
		event_date, event_time, seat_row, seat, section,
		barcode, price_cents, status, extraction, rejected_for,
		created_at, updated_at`

// Compile-time interface verification.
var _ TicketRepository = (*PgTicketRepository)(nil)

// PgTicketRepository is a PostgreSQL implementation of TicketRepository.
type PgTicketRepository struct {
	db DBTX
}

// NewPgTicketRepository creates a new PostgreSQL ticket repository.
func NewPgTicketRepository(db DBTX) *PgTicketRepository {
	return &PgTicketRepository{db: db}
}

// Create inserts a new ticket.
func (r *PgTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket == nil {
		return domain.NewValidationError("ticket", "ticket cannot be nil")
	}
	if ticket.ID == uuid.Nil {
		return domain.NewValidationError("id", "ticket ID is required")
	}
	if ticket.SellerID == "" {
		return domain.NewValidationError("seller_id", "seller ID is required")
	}

	extractionJSON, err := marshalExtraction(ticket.Extraction)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tickets (
			id, concert_id, seller_id, artist, venue,
			event_date, event_time, seat_row, seat, section,
			barcode, price_cents, status, extraction, rejected_for,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15,
			$16, $17
		)`

	_, err = r.db.Exec(ctx, query,
		ticket.ID, ticket.ConcertID, ticket.SellerID, ticket.Artist, ticket.Venue,
		ticket.EventDate, ticket.EventTime, ticket.SeatRow, ticket.Seat, ticket.Section,
		ticket.Barcode, ticket.PriceCents, ticket.Status, extractionJSON, nullString(ticket.RejectedFor),
		ticket.CreatedAt, ticket.UpdatedAt,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("ticket", ticket.ID.String())
		}
		if isPgForeignKeyViolation(err) {
			return domain.NewValidationError("concert_id", "referenced concert does not exist")
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	return nil
}

// Get retrieves a ticket by its ID.
func (r *PgTicketRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = $1`, ticketColumns)

	row := r.db.QueryRow(ctx, query, id)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("ticket", id.String())
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// List retrieves tickets matching the filter criteria.
func (r *PgTicketRepository) List(ctx context.Context, filter TicketFilter) ([]*domain.Ticket, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	// Build dynamic WHERE clause
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIndex := 1

	if filter.SellerID != "" {
		conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIndex))
		args = append(args, filter.SellerID)
		argIndex++
	}

	if filter.ConcertID != nil {
		conditions = append(conditions, fmt.Sprintf("concert_id = $%d", argIndex))
		args = append(args, *filter.ConcertID)
		argIndex++
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, s)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.CreatedAfter != nil {
		conditions = append(conditions, fmt.Sprintf("created_at > $%d", argIndex))
		args = append(args, *filter.CreatedAfter)
		argIndex++
	}

	if filter.CreatedBefore != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", argIndex))
		args = append(args, *filter.CreatedBefore)
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count total matching records
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tickets WHERE %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	// Query with pagination
	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		ticketColumns, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0, filter.Limit)
	for rows.Next() {
		ticket, err := scanTicketFromRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, totalCount, nil
}

// ListAll retrieves every stored ticket for duplicate detection.
func (r *PgTicketRepository) ListAll(ctx context.Context) ([]*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets ORDER BY created_at ASC`, ticketColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list all tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicketFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// UpdateStatus transitions a ticket to a new status.
func (r *PgTicketRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TicketStatus, rejectedFor string) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	if !isValidTicketTransition(current.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s: %w",
			current.Status, status, domain.ErrInvalidInput)
	}

	var reason *string
	if status == domain.TicketStatusRejected {
		reason = nullString(rejectedFor)
	}

	query := `
		UPDATE tickets
		SET status = $1, rejected_for = $2, updated_at = $3
		WHERE id = $4`

	result, err := r.db.Exec(ctx, query, status, reason, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("ticket", id.String())
	}

	return nil
}

// SetConcert links a ticket to a matched concert.
func (r *PgTicketRepository) SetConcert(ctx context.Context, id uuid.UUID, concertID uuid.UUID) error {
	query := `
		UPDATE tickets
		SET concert_id = $1, updated_at = $2
		WHERE id = $3`

	result, err := r.db.Exec(ctx, query, concertID, time.Now().UTC(), id)
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.NewValidationError("concert_id", "referenced concert does not exist")
		}
		return fmt.Errorf("failed to set ticket concert: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("ticket", id.String())
	}

	return nil
}

// SetExtraction stores the extraction result for a ticket.
func (r *PgTicketRepository) SetExtraction(ctx context.Context, id uuid.UUID, extraction *domain.ExtractedFields) error {
	extractionJSON, err := marshalExtraction(extraction)
	if err != nil {
		return err
	}

	query := `
		UPDATE tickets
		SET extraction = $1, updated_at = $2
		WHERE id = $3`

	result, err := r.db.Exec(ctx, query, extractionJSON, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set ticket extraction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("ticket", id.String())
	}

	return nil
}

// isValidTicketTransition validates that a status transition is allowed.
func isValidTicketTransition(from, to domain.TicketStatus) bool {
	// Terminal states cannot transition to anything.
	if from.IsTerminal() {
		return false
	}

	allowed, ok := validTicketTransitions[from]
	if !ok {
		return false
	}

	for _, s := range allowed {
		if s == to {
			return true
		}
	}

	return false
}

// marshalExtraction serializes the extraction result, preserving NULL for absent results.
func marshalExtraction(extraction *domain.ExtractedFields) ([]byte, error) {
	if extraction == nil {
		return nil, nil
	}
	data, err := json.Marshal(extraction)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extraction: %w", err)
	}
	return data, nil
}

// ticketScanDest holds the destination pointers for scanning a ticket row.
// This eliminates code duplication between pgx.Row and pgx.Rows scanning.
type ticketScanDest struct {
	ticket         domain.Ticket
	extractionJSON []byte
	rejectedFor    *string
}

// destinations returns the slice of pointers for Scan operations.
func (d *ticketScanDest) destinations() []interface{} {
	return []interface{}{
		&d.ticket.ID, &d.ticket.ConcertID, &d.ticket.SellerID, &d.ticket.Artist, &d.ticket.Venue,
		&d.ticket.EventDate, &d.ticket.EventTime, &d.ticket.SeatRow, &d.ticket.Seat, &d.ticket.Section,
		&d.ticket.Barcode, &d.ticket.PriceCents, &d.ticket.Status, &d.extractionJSON, &d.rejectedFor,
		&d.ticket.CreatedAt, &d.ticket.UpdatedAt,
	}
}

// finalize performs post-scan processing: sets nullable fields and unmarshals JSON.
func (d *ticketScanDest) finalize() (*domain.Ticket, error) {
	if d.rejectedFor != nil {
		d.ticket.RejectedFor = *d.rejectedFor
	}

	if len(d.extractionJSON) > 0 {
		var extraction domain.ExtractedFields
		if err := json.Unmarshal(d.extractionJSON, &extraction); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extraction: %w", err)
		}
		d.ticket.Extraction = &extraction
	}

	return &d.ticket, nil
}

// scanTicket scans a single row into a Ticket.
func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var dest ticketScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}

// scanTicketFromRows scans the current row from pgx.Rows into a Ticket.
func scanTicketFromRows(rows pgx.Rows) (*domain.Ticket, error) {
	var dest ticketScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}
