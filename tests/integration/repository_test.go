//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
)

func newTestTicket(mutate func(*domain.Ticket)) *domain.Ticket {
	now := time.Now().UTC().Truncate(time.Microsecond)
	tk := &domain.Ticket{
		ID:         uuid.New(),
		SellerID:   "seller-integration",
		Artist:     "עומר אדם",
		Venue:      "פארק הירקון",
		EventDate:  "15.07.2026",
		EventTime:  "21:00",
		SeatRow:    "12",
		Seat:       "7",
		Section:    "B",
		PriceCents: 25000,
		Status:     domain.TicketStatusPendingReview,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if mutate != nil {
		mutate(tk)
	}
	return tk
}

func TestPgTicketRepository_Integration(t *testing.T) {
	cleanTable(t, "tickets")
	repo := repository.NewPgTicketRepository(testPool)
	ctx := context.Background()

	t.Run("Create and Get roundtrip", func(t *testing.T) {
		ticket := newTestTicket(func(tk *domain.Ticket) {
			tk.Barcode = "1000000000001"
			tk.Extraction = &domain.ExtractedFields{
				Artist:     "עומר אדם",
				Price:      "250",
				Currency:   "ILS",
				Confidence: 0.95,
			}
		})

		require.NoError(t, repo.Create(ctx, ticket))

		got, err := repo.Get(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, ticket.ID, got.ID)
		assert.Equal(t, "עומר אדם", got.Artist)
		assert.Equal(t, "1000000000001", got.Barcode)
		assert.Equal(t, domain.TicketStatusPendingReview, got.Status)
		require.NotNil(t, got.Extraction)
		assert.Equal(t, "250", got.Extraction.Price)
		assert.InDelta(t, 0.95, got.Extraction.Confidence, 1e-9)
	})

	t.Run("Create duplicate ID returns already exists", func(t *testing.T) {
		ticket := newTestTicket(nil)
		require.NoError(t, repo.Create(ctx, ticket))

		err := repo.Create(ctx, ticket)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("Duplicate barcode rejected by unique index", func(t *testing.T) {
		first := newTestTicket(func(tk *domain.Ticket) { tk.Barcode = "2000000000002" })
		require.NoError(t, repo.Create(ctx, first))

		second := newTestTicket(func(tk *domain.Ticket) { tk.Barcode = "2000000000002" })
		err := repo.Create(ctx, second)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("Empty barcodes do not collide", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newTestTicket(nil)))
		require.NoError(t, repo.Create(ctx, newTestTicket(nil)))
	})

	t.Run("UpdateStatus transitions and stores rejection reason", func(t *testing.T) {
		ticket := newTestTicket(nil)
		require.NoError(t, repo.Create(ctx, ticket))

		require.NoError(t, repo.UpdateStatus(ctx, ticket.ID, domain.TicketStatusRejected, "blurry photo"))

		got, err := repo.Get(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusRejected, got.Status)
		assert.Equal(t, "blurry photo", got.RejectedFor)
	})

	t.Run("List filters by seller and status", func(t *testing.T) {
		cleanTable(t, "tickets")

		approved := newTestTicket(func(tk *domain.Ticket) { tk.SellerID = "seller-a" })
		require.NoError(t, repo.Create(ctx, approved))
		require.NoError(t, repo.UpdateStatus(ctx, approved.ID, domain.TicketStatusApproved, ""))
		require.NoError(t, repo.Create(ctx, newTestTicket(func(tk *domain.Ticket) { tk.SellerID = "seller-a" })))
		require.NoError(t, repo.Create(ctx, newTestTicket(func(tk *domain.Ticket) { tk.SellerID = "seller-b" })))

		tickets, total, err := repo.List(ctx, repository.TicketFilter{
			SellerID: "seller-a",
			Status:   []domain.TicketStatus{domain.TicketStatusApproved},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, tickets, 1)
		assert.Equal(t, approved.ID, tickets[0].ID)
	})

	t.Run("SetConcert links ticket to concert", func(t *testing.T) {
		cleanTable(t, "tickets", "concerts")

		concertRepo := repository.NewPgConcertRepository(testPool)
		concert := newTestConcert(nil)
		require.NoError(t, concertRepo.Create(ctx, concert))

		ticket := newTestTicket(nil)
		require.NoError(t, repo.Create(ctx, ticket))
		require.NoError(t, repo.SetConcert(ctx, ticket.ID, concert.ID))

		got, err := repo.Get(ctx, ticket.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ConcertID)
		assert.Equal(t, concert.ID, *got.ConcertID)
	})
}

func newTestConcert(mutate func(*domain.Concert)) *domain.Concert {
	now := time.Now().UTC().Truncate(time.Microsecond)
	c := &domain.Concert{
		ID:         uuid.New(),
		Artist:     "עומר אדם",
		Venue:      "פארק הירקון",
		EventDate:  "15.07.2026",
		EventTime:  "21:00",
		PriceCents: 25000,
		Status:     domain.ConcertStatusUpcoming,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if mutate != nil {
		mutate(c)
	}
	return c
}

func TestPgConcertRepository_Integration(t *testing.T) {
	cleanTable(t, "concerts")
	repo := repository.NewPgConcertRepository(testPool)
	ctx := context.Background()

	t.Run("Create and Get roundtrip", func(t *testing.T) {
		concert := newTestConcert(nil)
		require.NoError(t, repo.Create(ctx, concert))

		got, err := repo.Get(ctx, concert.ID)
		require.NoError(t, err)
		assert.Equal(t, concert.Artist, got.Artist)
		assert.Equal(t, concert.EventDate, got.EventDate)
		assert.Equal(t, domain.ConcertStatusUpcoming, got.Status)
	})

	t.Run("Get unknown ID returns not found", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("List filters by status and date", func(t *testing.T) {
		cleanTable(t, "concerts")

		require.NoError(t, repo.Create(ctx, newTestConcert(nil)))
		require.NoError(t, repo.Create(ctx, newTestConcert(func(c *domain.Concert) {
			c.EventDate = "01.01.2025"
			c.Status = domain.ConcertStatusPast
		})))

		concerts, _, err := repo.List(ctx, repository.ConcertFilter{
			Status: domain.ConcertStatusUpcoming,
		})
		require.NoError(t, err)
		require.Len(t, concerts, 1)
		assert.Equal(t, "15.07.2026", concerts[0].EventDate)
	})
}

func TestPgAliasRepository_Integration(t *testing.T) {
	cleanTable(t, "artist_aliases")
	repo := repository.NewPgAliasRepository(testPool)
	ctx := context.Background()

	t.Run("Upsert and Get roundtrip", func(t *testing.T) {
		alias := &domain.ArtistAlias{
			Canonical: "omer adam",
			Aliases:   []string{"עומר אדם", "omer adom"},
		}
		require.NoError(t, repo.Upsert(ctx, alias))

		got, err := repo.Get(ctx, "omer adam")
		require.NoError(t, err)
		assert.Equal(t, []string{"עומר אדם", "omer adom"}, got.Aliases)
	})

	t.Run("Upsert replaces alias set", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &domain.ArtistAlias{
			Canonical: "omer adam",
			Aliases:   []string{"עומר אדם", "omer adom", "omer adam"},
		}))

		got, err := repo.Get(ctx, "omer adam")
		require.NoError(t, err)
		assert.Len(t, got.Aliases, 3)
	})

	t.Run("GetAll returns every group", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &domain.ArtistAlias{
			Canonical: "eyal golan",
			Aliases:   []string{"אייל גולן"},
		}))

		groups, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Contains(t, groups, "omer adam")
		assert.Contains(t, groups, "eyal golan")
	})

	t.Run("Get unknown canonical returns not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "unknown artist")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
