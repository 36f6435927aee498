package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/extract"
	"github.com/tixhub/ticket-exchange-service/internal/observability"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
)

// ExtractActivities provides the field-extraction activity. The known artist
// and venue lists come from the concert catalog at execution time, so newly
// added concerts immediately anchor high-confidence matches.
type ExtractActivities struct {
	concerts repository.ConcertRepository
	metrics  *observability.Metrics
}

// NewExtractActivities creates a new ExtractActivities instance.
func NewExtractActivities(concerts repository.ConcertRepository, metrics *observability.Metrics) *ExtractActivities {
	return &ExtractActivities{
		concerts: concerts,
		metrics:  metrics,
	}
}

// ExtractFields runs the regex heuristics over OCR text and merges the result
// with the vision model's field guess. Extraction never fails; a catalog load
// error only degrades the known-list anchors.
func (a *ExtractActivities) ExtractFields(ctx context.Context, input ExtractFieldsInput) (*ExtractFieldsOutput, error) {
	logger := activity.GetLogger(ctx)

	if a.metrics != nil {
		a.metrics.RecordExtractionStarted()
	}

	var knownArtists, knownVenues []string
	concerts, err := a.concerts.ListUpcoming(ctx)
	if err != nil {
		logger.Warn("failed to load concert catalog, extracting without known lists", "error", err)
	} else {
		seenArtists := make(map[string]struct{}, len(concerts))
		seenVenues := make(map[string]struct{}, len(concerts))
		for _, c := range concerts {
			if _, ok := seenArtists[c.Artist]; !ok {
				seenArtists[c.Artist] = struct{}{}
				knownArtists = append(knownArtists, c.Artist)
			}
			if _, ok := seenVenues[c.Venue]; !ok {
				seenVenues[c.Venue] = struct{}{}
				knownVenues = append(knownVenues, c.Venue)
			}
		}
	}

	extractor := extract.NewExtractor(knownArtists, knownVenues)
	heuristic := extractor.Extract(input.RawText)
	merged := extract.Merge(heuristic, input.VisionFields)

	if a.metrics != nil {
		a.metrics.RecordExtractionCompleted(merged.Confidence, presentFields(&merged))
	}

	logger.Info("fields extracted",
		"artist", merged.Artist != "",
		"venue", merged.Venue != "",
		"date", merged.Date != "",
		"price", merged.Price != "",
		"confidence", merged.Confidence,
	)

	return &ExtractFieldsOutput{Fields: merged}, nil
}

// presentFields lists the logical field names the extraction recovered.
func presentFields(f *domain.ExtractedFields) []string {
	var present []string
	for _, entry := range []struct {
		name  string
		value string
	}{
		{"artist", f.Artist},
		{"venue", f.Venue},
		{"date", f.Date},
		{"time", f.Time},
		{"price", f.Price},
		{"row", f.SeatRow},
		{"seat", f.Seat},
		{"section", f.Section},
		{"barcode", f.Barcode},
	} {
		if entry.value != "" {
			present = append(present, entry.name)
		}
	}
	return present
}
