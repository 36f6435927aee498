package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/tixhub/ticket-exchange-service/internal/match"
	"github.com/tixhub/ticket-exchange-service/internal/observability"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
)

// MatchActivities provides the concert-matching activity.
type MatchActivities struct {
	matcher  *match.Matcher
	concerts repository.ConcertRepository
	metrics  *observability.Metrics
}

// NewMatchActivities creates a new MatchActivities instance.
func NewMatchActivities(matcher *match.Matcher, concerts repository.ConcertRepository, metrics *observability.Metrics) *MatchActivities {
	return &MatchActivities{
		matcher:  matcher,
		concerts: concerts,
		metrics:  metrics,
	}
}

// MatchConcert finds the upcoming concert whose artist best matches the
// extracted name. An empty artist or an empty catalog is not an error; the
// ticket simply stays unlinked.
func (a *MatchActivities) MatchConcert(ctx context.Context, input MatchConcertInput) (*MatchConcertOutput, error) {
	logger := activity.GetLogger(ctx)

	if input.Artist == "" {
		return &MatchConcertOutput{}, nil
	}

	concerts, err := a.concerts.ListUpcoming(ctx)
	if err != nil {
		return nil, err
	}
	if len(concerts) == 0 {
		return &MatchConcertOutput{}, nil
	}

	candidates := make([]string, len(concerts))
	for i, c := range concerts {
		candidates[i] = c.Artist
	}

	best, score := a.matcher.FindBestMatch(ctx, input.Artist, candidates)
	if a.metrics != nil {
		a.metrics.RecordMatchAttempt(best != "", score)
	}
	if best == "" {
		logger.Info("no concert matched", "artist", input.Artist)
		return &MatchConcertOutput{}, nil
	}

	// First concert with the winning artist, preserving catalog order.
	for _, c := range concerts {
		if c.Artist == best {
			logger.Info("concert matched",
				"artist", input.Artist,
				"matchedArtist", best,
				"concertID", c.ID,
				"score", score,
			)
			return &MatchConcertOutput{
				Matched:       true,
				ConcertID:     c.ID,
				MatchedArtist: best,
				Score:         score,
			}, nil
		}
	}

	return &MatchConcertOutput{}, nil
}
