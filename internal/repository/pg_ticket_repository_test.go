package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

var ticketColumnNames = []string{
	"id", "concert_id", "seller_id", "artist", "venue",
	"event_date", "event_time", "seat_row", "seat", "section",
	"barcode", "price_cents", "status", "extraction", "rejected_for",
	"created_at", "updated_at",
}

func ticketRow(id uuid.UUID, status domain.TicketStatus) *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows(ticketColumnNames).AddRow(
		id, (*uuid.UUID)(nil), "seller-1", "עומר אדם", "פארק הירקון",
		"15.07.2026", "21:00", "12", "7", "B",
		"1234567890", 35000, status, []byte(nil), (*string)(nil),
		now, now,
	)
}

func TestPgTicketRepository_Create(t *testing.T) {
	t.Run("creates ticket", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgTicketRepository(mock)
		ctx := context.Background()

		ticket := &domain.Ticket{
			ID:        uuid.New(),
			SellerID:  "seller-1",
			Artist:    "עומר אדם",
			Venue:     "פארק הירקון",
			EventDate: "15.07.2026",
			EventTime: "21:00",
			Status:    domain.TicketStatusPendingReview,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}

		mock.ExpectExec(`INSERT INTO tickets`).
			WithArgs(
				ticket.ID, ticket.ConcertID, ticket.SellerID, ticket.Artist, ticket.Venue,
				ticket.EventDate, ticket.EventTime, ticket.SeatRow, ticket.Seat, ticket.Section,
				ticket.Barcode, ticket.PriceCents, ticket.Status, []byte(nil), (*string)(nil),
				ticket.CreatedAt, ticket.UpdatedAt,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.Create(ctx, ticket)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects missing seller", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgTicketRepository(mock)

		err = repo.Create(context.Background(), &domain.Ticket{ID: uuid.New()})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("rejects nil ticket", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgTicketRepository(mock)

		err = repo.Create(context.Background(), nil)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestPgTicketRepository_Get(t *testing.T) {
	t.Run("returns ticket when found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgTicketRepository(mock)
		ctx := context.Background()

		ticketID := uuid.New()
		mock.ExpectQuery(`SELECT .+ FROM tickets WHERE id = \$1`).
			WithArgs(ticketID).
			WillReturnRows(ticketRow(ticketID, domain.TicketStatusPendingReview))

		result, err := repo.Get(ctx, ticketID)
		require.NoError(t, err)
		assert.Equal(t, ticketID, result.ID)
		assert.Equal(t, "עומר אדם", result.Artist)
		assert.Nil(t, result.Extraction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgTicketRepository(mock)

		ticketID := uuid.New()
		mock.ExpectQuery(`SELECT .+ FROM tickets WHERE id = \$1`).
			WithArgs(ticketID).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.Get(context.Background(), ticketID)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgTicketRepository_ListAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgTicketRepository(mock)

	id1 := uuid.New()
	mock.ExpectQuery(`SELECT .+ FROM tickets ORDER BY created_at ASC`).
		WillReturnRows(ticketRow(id1, domain.TicketStatusApproved))

	tickets, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, id1, tickets[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTicketRepository_UpdateStatus(t *testing.T) {
	t.Run("approves pending ticket", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgTicketRepository(mock)
		ctx := context.Background()

		ticketID := uuid.New()
		mock.ExpectQuery(`SELECT .+ FROM tickets WHERE id = \$1`).
			WithArgs(ticketID).
			WillReturnRows(ticketRow(ticketID, domain.TicketStatusPendingReview))
		mock.ExpectExec(`UPDATE tickets`).
			WithArgs(domain.TicketStatusApproved, (*string)(nil), pgxmock.AnyArg(), ticketID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.UpdateStatus(ctx, ticketID, domain.TicketStatusApproved, "")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stores rejection reason", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgTicketRepository(mock)
		ctx := context.Background()

		ticketID := uuid.New()
		reason := "duplicate_ticket"
		mock.ExpectQuery(`SELECT .+ FROM tickets WHERE id = \$1`).
			WithArgs(ticketID).
			WillReturnRows(ticketRow(ticketID, domain.TicketStatusPendingReview))
		mock.ExpectExec(`UPDATE tickets`).
			WithArgs(domain.TicketStatusRejected, &reason, pgxmock.AnyArg(), ticketID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.UpdateStatus(ctx, ticketID, domain.TicketStatusRejected, reason)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects transition out of terminal state", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgTicketRepository(mock)
		ctx := context.Background()

		ticketID := uuid.New()
		mock.ExpectQuery(`SELECT .+ FROM tickets WHERE id = \$1`).
			WithArgs(ticketID).
			WillReturnRows(ticketRow(ticketID, domain.TicketStatusSold))

		err = repo.UpdateStatus(ctx, ticketID, domain.TicketStatusApproved, "")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgTicketRepository_SetConcert(t *testing.T) {
	t.Run("links ticket to concert", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgTicketRepository(mock)

		ticketID := uuid.New()
		concertID := uuid.New()
		mock.ExpectExec(`UPDATE tickets`).
			WithArgs(concertID, pgxmock.AnyArg(), ticketID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err = repo.SetConcert(context.Background(), ticketID, concertID)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing ticket", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgTicketRepository(mock)

		ticketID := uuid.New()
		mock.ExpectExec(`UPDATE tickets`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), ticketID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err = repo.SetConcert(context.Background(), ticketID, uuid.New())
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPgTicketRepository_SetExtraction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgTicketRepository(mock)

	ticketID := uuid.New()
	extraction := &domain.ExtractedFields{
		Artist:     "עומר אדם",
		Confidence: 0.95,
	}

	mock.ExpectExec(`UPDATE tickets`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), ticketID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.SetExtraction(context.Background(), ticketID, extraction)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketFilter_Validate(t *testing.T) {
	t.Run("applies pagination defaults", func(t *testing.T) {
		f := TicketFilter{}
		require.NoError(t, f.Validate())
		assert.Equal(t, 100, f.Limit)
		assert.Equal(t, 0, f.Offset)
	})

	t.Run("clamps excessive limit", func(t *testing.T) {
		f := TicketFilter{Limit: 5000, Offset: -3}
		require.NoError(t, f.Validate())
		assert.Equal(t, 1000, f.Limit)
		assert.Equal(t, 0, f.Offset)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		f := TicketFilter{Status: []domain.TicketStatus{"bogus"}}
		err := f.Validate()
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}
