// Package extract pulls ticket fields (price, artist, venue, date, time,
// seating) out of raw OCR text using regex heuristics, each field scored with
// an independent confidence in [0,1].
package extract

import (
	"sort"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// Extraction is the raw per-field output of one heuristic pass: candidate
// lists for ranked fields, plus single-valued date/time and seating results.
type Extraction struct {
	Price    []domain.FieldCandidate
	Currency string
	Artist   []domain.FieldCandidate
	Venue    []domain.FieldCandidate
	DateTime DateTimeResult
	Seating  SeatingResult
}

// Extractor runs the per-field heuristics against OCR text. Known artist and
// venue lists come from the concert catalog; they anchor the high-confidence
// containment checks.
type Extractor struct {
	knownArtists []string
	knownVenues  []string
}

// NewExtractor creates an Extractor with the given known artist and venue
// lists. Either list may be empty; the corresponding extractor then falls back
// to its pattern-based low-confidence candidates only.
func NewExtractor(knownArtists, knownVenues []string) *Extractor {
	return &Extractor{
		knownArtists: knownArtists,
		knownVenues:  knownVenues,
	}
}

// Extract runs every per-field extractor over rawText. Extractors never fail:
// a field with no pattern match simply has an empty candidate list. Candidate
// lists are sorted by descending confidence.
func (e *Extractor) Extract(rawText string) Extraction {
	ex := Extraction{
		Artist:   ExtractArtists(rawText, e.knownArtists),
		Venue:    ExtractVenues(rawText, e.knownVenues),
		DateTime: ExtractDateTime(rawText),
		Seating:  ExtractSeating(rawText),
	}
	ex.Price, ex.Currency = ExtractPrices(rawText)
	return ex
}

// sortByConfidence orders candidates by descending confidence, stable so that
// earlier-pattern candidates win ties.
func sortByConfidence(candidates []domain.FieldCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
}

// top returns the highest-confidence candidate, or a zero candidate when the
// list is empty.
func top(candidates []domain.FieldCandidate) domain.FieldCandidate {
	if len(candidates) == 0 {
		return domain.FieldCandidate{}
	}
	return candidates[0]
}
