package extract

import (
	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// fieldSource is one prioritized value source for a logical field. Merge
// reduces over an ordered list of these, taking the first non-empty value;
// keeping the policy in one reducer means the precedence between heuristics
// and the vision model can change without touching the extractors.
type fieldSource struct {
	value      string
	confidence float64
}

// pick returns the first source with a non-empty value.
func pick(sources ...fieldSource) fieldSource {
	for _, s := range sources {
		if s.value != "" {
			return s
		}
	}
	return fieldSource{}
}

// Merge combines a heuristic extraction pass with a vision model's own
// structured guess into one ExtractedFields record. For every logical field
// the heuristic's top candidate wins when present, with the vision value as
// fallback. The overall confidence is the maximum across all per-field
// confidences and the vision model's self-reported confidence: an optimistic
// combination, not a statistical fusion.
func Merge(heuristic Extraction, guess *domain.ExtractedFields) domain.ExtractedFields {
	if guess == nil {
		guess = &domain.ExtractedFields{}
	}

	artist := pick(
		fieldSource{top(heuristic.Artist).Value, top(heuristic.Artist).Confidence},
		fieldSource{guess.Artist, guess.Confidence},
	)
	venue := pick(
		fieldSource{top(heuristic.Venue).Value, top(heuristic.Venue).Confidence},
		fieldSource{guess.Venue, guess.Confidence},
	)
	date := pick(
		fieldSource{heuristic.DateTime.Date, heuristic.DateTime.Confidence},
		fieldSource{guess.Date, guess.Confidence},
	)
	eventTime := pick(
		fieldSource{heuristic.DateTime.Time, heuristic.DateTime.Confidence},
		fieldSource{guess.Time, guess.Confidence},
	)
	price := pick(
		fieldSource{top(heuristic.Price).Value, top(heuristic.Price).Confidence},
		fieldSource{guess.Price, guess.Confidence},
	)
	currency := pick(
		fieldSource{heuristic.Currency, top(heuristic.Price).Confidence},
		fieldSource{guess.Currency, guess.Confidence},
	)
	row := pick(
		fieldSource{heuristic.Seating.Row, heuristic.Seating.Confidence},
		fieldSource{guess.SeatRow, guess.Confidence},
	)
	seat := pick(
		fieldSource{heuristic.Seating.Seat, heuristic.Seating.Confidence},
		fieldSource{guess.Seat, guess.Confidence},
	)
	section := pick(
		fieldSource{heuristic.Seating.Section, heuristic.Seating.Confidence},
		fieldSource{guess.Section, guess.Confidence},
	)

	overall := guess.Confidence
	for _, c := range []float64{
		artist.confidence, venue.confidence, date.confidence,
		eventTime.confidence, price.confidence,
		row.confidence, seat.confidence, section.confidence,
	} {
		if c > overall {
			overall = c
		}
	}

	return domain.ExtractedFields{
		Artist:     artist.value,
		Venue:      venue.value,
		Date:       date.value,
		Time:       eventTime.value,
		Price:      price.value,
		Currency:   currency.value,
		SeatRow:    row.value,
		Seat:       seat.value,
		Section:    section.value,
		Barcode:    guess.Barcode,
		Confidence: overall,
	}
}
