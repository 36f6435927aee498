package activities

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.temporal.io/sdk/activity"

	"github.com/tixhub/ticket-exchange-service/internal/database"
	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/observability"
	"github.com/tixhub/ticket-exchange-service/internal/outbox"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
)

// TicketActivities provides the finalization activity closing out an intake
// run: it persists the extraction, links the matched concert, settles the
// ticket status and emits the outbox event, all in one transaction.
type TicketActivities struct {
	db      *database.DB
	emitter *outbox.Emitter
	metrics *observability.Metrics
}

// NewTicketActivities creates a new TicketActivities instance.
func NewTicketActivities(db *database.DB, emitter *outbox.Emitter, metrics *observability.Metrics) *TicketActivities {
	return &TicketActivities{
		db:      db,
		emitter: emitter,
		metrics: metrics,
	}
}

// FinalizeTicket persists the intake result. Duplicates are rejected with the
// colliding ticket recorded in the rejection reason; everything else stays in
// pending_review awaiting admin approval. The status change and its outbox
// event commit atomically.
func (a *TicketActivities) FinalizeTicket(ctx context.Context, input FinalizeTicketInput) (*FinalizeTicketOutput, error) {
	logger := activity.GetLogger(ctx)

	var finalStatus domain.TicketStatus

	err := a.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		tickets := repository.NewPgTicketRepository(tx)

		ticket, err := tickets.Get(ctx, input.TicketID)
		if err != nil {
			return err
		}

		if input.Extraction != nil {
			if err := tickets.SetExtraction(ctx, input.TicketID, input.Extraction); err != nil {
				return err
			}
		}
		if input.ConcertID != nil {
			if err := tickets.SetConcert(ctx, input.TicketID, *input.ConcertID); err != nil {
				return err
			}
		}

		if input.IsDuplicate {
			reason := fmt.Sprintf("duplicate of %s (%s match)", input.DuplicateOf, input.MatchType)
			if err := tickets.UpdateStatus(ctx, input.TicketID, domain.TicketStatusRejected, reason); err != nil {
				return err
			}
			finalStatus = domain.TicketStatusRejected

			return a.emitter.EmitTicketDuplicateRejected(ctx, tx, domain.TicketDuplicateRejectedPayload{
				SellerID:   input.SellerID,
				MatchType:  input.MatchType,
				ExistingID: input.DuplicateOf,
				Artist:     ticket.Artist,
				Venue:      ticket.Venue,
				EventDate:  ticket.EventDate,
			})
		}

		finalStatus = domain.TicketStatusPendingReview

		return a.emitter.EmitTicketSubmitted(ctx, tx, domain.TicketSubmittedPayload{
			TicketID:   ticket.ID,
			ConcertID:  input.ConcertID,
			SellerID:   input.SellerID,
			Artist:     ticket.Artist,
			Venue:      ticket.Venue,
			EventDate:  ticket.EventDate,
			PriceCents: ticket.PriceCents,
		})
	})
	if err != nil {
		return nil, err
	}

	if a.metrics != nil {
		if finalStatus == domain.TicketStatusRejected {
			a.metrics.RecordTicketRejected()
		} else {
			a.metrics.RecordTicketSubmitted()
		}
	}

	logger.Info("ticket finalized", "ticketID", input.TicketID, "status", finalStatus)

	return &FinalizeTicketOutput{Status: finalStatus}, nil
}
