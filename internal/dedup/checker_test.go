package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

type staticLister struct {
	tickets []*domain.Ticket
	err     error
}

func (s *staticLister) ListAll(ctx context.Context) ([]*domain.Ticket, error) {
	return s.tickets, s.err
}

func ticketFixture(mutate func(*domain.Ticket)) *domain.Ticket {
	t := &domain.Ticket{
		ID:        uuid.New(),
		Artist:    "עומר אדם",
		Venue:     "פארק הירקון",
		EventDate: "15.07.2026",
		EventTime: "21:00",
		SeatRow:   "12",
		Seat:      "7",
		Section:   "B",
		Barcode:   "1234567890",
	}
	if mutate != nil {
		mutate(t)
	}
	return t
}

func TestChecker_BarcodeMatch(t *testing.T) {
	existing := ticketFixture(nil)
	checker := NewChecker(&staticLister{tickets: []*domain.Ticket{existing}})

	result, err := checker.Check(context.Background(), Candidate{
		Artist:    "אייל גולן",
		Venue:     "היכל מנורה",
		EventDate: "01.01.2027",
		Barcode:   "  1234567890  ",
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, domain.DuplicateMatchBarcode, result.MatchType)
	assert.Equal(t, existing.ID, result.DuplicateOf)
}

func TestChecker_EmptyBarcodeNeverMatchesEmptyBarcode(t *testing.T) {
	existing := ticketFixture(func(tk *domain.Ticket) {
		tk.Barcode = ""
		tk.Artist = "נועה קירל"
	})
	checker := NewChecker(&staticLister{tickets: []*domain.Ticket{existing}})

	result, err := checker.Check(context.Background(), Candidate{
		Artist:    "שלמה ארצי",
		Venue:     "קיסריה",
		EventDate: "02.02.2027",
		EventTime: "20:30",
		Barcode:   "   ",
	})
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
}

func TestChecker_EventDetailsMatch(t *testing.T) {
	existing := ticketFixture(func(tk *domain.Ticket) { tk.Barcode = "" })
	checker := NewChecker(&staticLister{tickets: []*domain.Ticket{existing}})

	// Same event, different surface forms for the normalized fields.
	result, err := checker.Check(context.Background(), Candidate{
		Artist:    "עומר  אדם",
		Venue:     "פארק הירקון.",
		EventDate: " 15.07.2026 ",
		EventTime: "21:00",
		SeatRow:   "12",
		Seat:      "7",
		Section:   "b",
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, domain.DuplicateMatchEventDetails, result.MatchType)
	assert.Equal(t, existing.ID, result.DuplicateOf)
}

func TestChecker_DateFormatMismatchIsNotDuplicate(t *testing.T) {
	existing := ticketFixture(func(tk *domain.Ticket) { tk.Barcode = "" })
	checker := NewChecker(&staticLister{tickets: []*domain.Ticket{existing}})

	// Date comparison is exact after trimming, not semantic.
	result, err := checker.Check(context.Background(), Candidate{
		Artist:    "עומר אדם",
		Venue:     "פארק הירקון",
		EventDate: "15/07/2026",
		EventTime: "21:00",
		SeatRow:   "12",
		Seat:      "7",
		Section:   "B",
	})
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
}

func TestChecker_AliasSpellingIsNotDuplicate(t *testing.T) {
	existing := ticketFixture(func(tk *domain.Ticket) { tk.Barcode = "" })
	checker := NewChecker(&staticLister{tickets: []*domain.Ticket{existing}})

	// Alias equivalence belongs to concert matching, not duplicate detection.
	result, err := checker.Check(context.Background(), Candidate{
		Artist:    "Omer Adam",
		Venue:     "פארק הירקון",
		EventDate: "15.07.2026",
		EventTime: "21:00",
		SeatRow:   "12",
		Seat:      "7",
		Section:   "B",
	})
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
}

func TestChecker_SeatDifferenceIsNotDuplicate(t *testing.T) {
	existing := ticketFixture(func(tk *domain.Ticket) { tk.Barcode = "" })
	checker := NewChecker(&staticLister{tickets: []*domain.Ticket{existing}})

	result, err := checker.Check(context.Background(), Candidate{
		Artist:    "עומר אדם",
		Venue:     "פארק הירקון",
		EventDate: "15.07.2026",
		EventTime: "21:00",
		SeatRow:   "12",
		Seat:      "8",
		Section:   "B",
	})
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
}

func TestChecker_BarcodeTakesPrecedenceOverEventDetails(t *testing.T) {
	other := ticketFixture(func(tk *domain.Ticket) {
		tk.Artist = "אייל גולן"
		tk.Barcode = "9999"
	})
	sameEvent := ticketFixture(func(tk *domain.Ticket) { tk.Barcode = "" })
	checker := NewChecker(&staticLister{tickets: []*domain.Ticket{sameEvent, other}})

	result, err := checker.Check(context.Background(), Candidate{
		Artist:    "עומר אדם",
		Venue:     "פארק הירקון",
		EventDate: "15.07.2026",
		EventTime: "21:00",
		SeatRow:   "12",
		Seat:      "7",
		Section:   "B",
		Barcode:   "9999",
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, domain.DuplicateMatchBarcode, result.MatchType)
	assert.Equal(t, other.ID, result.DuplicateOf)
}

func TestChecker_ListError(t *testing.T) {
	boom := errors.New("db down")
	checker := NewChecker(&staticLister{err: boom})

	result, err := checker.Check(context.Background(), Candidate{Barcode: "1"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
}
