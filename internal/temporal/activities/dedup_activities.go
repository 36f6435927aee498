package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/tixhub/ticket-exchange-service/internal/dedup"
	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/observability"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
)

// DedupActivities provides the duplicate-check activity.
type DedupActivities struct {
	checker *dedup.Checker
	tickets repository.TicketRepository
	metrics *observability.Metrics
}

// NewDedupActivities creates a new DedupActivities instance.
func NewDedupActivities(checker *dedup.Checker, tickets repository.TicketRepository, metrics *observability.Metrics) *DedupActivities {
	return &DedupActivities{
		checker: checker,
		tickets: tickets,
		metrics: metrics,
	}
}

// CheckDuplicate compares the submission against every stored ticket except
// itself. The ticket row already exists when this activity runs, so the
// submission must be excluded from its own comparison set.
func (a *DedupActivities) CheckDuplicate(ctx context.Context, input CheckDuplicateInput) (*CheckDuplicateOutput, error) {
	logger := activity.GetLogger(ctx)

	all, err := a.tickets.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	existing := make([]*domain.Ticket, 0, len(all))
	for _, t := range all {
		if t.ID == input.TicketID {
			continue
		}
		existing = append(existing, t)
	}

	result := a.checker.CheckAgainst(dedup.Candidate{
		Artist:    input.Artist,
		Venue:     input.Venue,
		EventDate: input.EventDate,
		EventTime: input.EventTime,
		SeatRow:   input.SeatRow,
		Seat:      input.Seat,
		Section:   input.Section,
		Barcode:   input.Barcode,
	}, existing)

	if result.IsDuplicate {
		if a.metrics != nil {
			a.metrics.RecordDuplicateDetected(string(result.MatchType))
		}
		logger.Info("duplicate detected",
			"ticketID", input.TicketID,
			"matchType", result.MatchType,
			"duplicateOf", result.DuplicateOf,
		)
		return &CheckDuplicateOutput{
			IsDuplicate: true,
			MatchType:   result.MatchType,
			DuplicateOf: result.DuplicateOf,
		}, nil
	}

	return &CheckDuplicateOutput{}, nil
}
