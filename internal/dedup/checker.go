// Package dedup detects resubmissions of existing resale tickets by exact
// barcode match or field-for-field event-details match.
package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/match"
)

// TicketLister defines the ticket-store operation needed by the checker.
type TicketLister interface {
	ListAll(ctx context.Context) ([]*domain.Ticket, error)
}

// Candidate is the ticket submission being checked for duplication.
type Candidate struct {
	Artist    string
	Venue     string
	EventDate string
	EventTime string
	Barcode   string
	SeatRow   string
	Seat      string
	Section   string
}

// CheckResult contains the result of a duplicate check for a single submission.
type CheckResult struct {
	// IsDuplicate indicates whether the submission duplicates an existing ticket.
	IsDuplicate bool

	// MatchType identifies the rule that fired. Empty if not a duplicate.
	MatchType domain.DuplicateMatchType

	// DuplicateOf is the ID of the existing ticket if duplicate. Zero value if not.
	DuplicateOf uuid.UUID
}

// Checker decides duplicate status for ticket submissions against the full
// existing ticket collection.
//
// The check is intentionally stricter than artist-name matching: event
// identity requires exact (normalized) field equality, not fuzzy name
// equivalence, so legitimately-identical tickets with differently-spelled
// artist names in the stored record are not caught by this path.
type Checker struct {
	tickets TicketLister
}

// NewChecker creates a new Checker reading existing tickets from the given store.
func NewChecker(tickets TicketLister) *Checker {
	return &Checker{tickets: tickets}
}

// Check determines whether the candidate duplicates an existing ticket.
//
// The rules, in order:
//  1. A supplied barcode that exactly matches (post-trim) any existing
//     record's barcode flags a duplicate of type "barcode", regardless of
//     every other field.
//  2. Otherwise, normalized artist and venue plus exact trimmed date and time
//     plus normalized seat, row and section all matching an existing record
//     flags a duplicate of type "event_details".
//  3. If no rule fires, the submission is not a duplicate.
func (c *Checker) Check(ctx context.Context, candidate Candidate) (*CheckResult, error) {
	existing, err := c.tickets.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tickets for duplicate check: %w", err)
	}
	return c.CheckAgainst(candidate, existing), nil
}

// CheckAgainst runs the duplicate rules against an already-loaded ticket
// collection.
func (c *Checker) CheckAgainst(candidate Candidate, existing []*domain.Ticket) *CheckResult {
	barcode := strings.TrimSpace(candidate.Barcode)
	if barcode != "" {
		for _, t := range existing {
			if strings.TrimSpace(t.Barcode) == barcode {
				return &CheckResult{
					IsDuplicate: true,
					MatchType:   domain.DuplicateMatchBarcode,
					DuplicateOf: t.ID,
				}
			}
		}
	}

	for _, t := range existing {
		// Tickets matched by barcode above are not reconsidered here.
		if barcode != "" && strings.TrimSpace(t.Barcode) == barcode {
			continue
		}
		if sameEventDetails(candidate, t) {
			return &CheckResult{
				IsDuplicate: true,
				MatchType:   domain.DuplicateMatchEventDetails,
				DuplicateOf: t.ID,
			}
		}
	}

	return &CheckResult{}
}

// sameEventDetails reports field-for-field equality of event identity and
// seating. Artist and venue are normalized; date and time use exact trimmed
// equality only.
func sameEventDetails(candidate Candidate, t *domain.Ticket) bool {
	if match.Normalize(candidate.Artist) != match.Normalize(t.Artist) {
		return false
	}
	if match.Normalize(candidate.Venue) != match.Normalize(t.Venue) {
		return false
	}
	if strings.TrimSpace(candidate.EventDate) != strings.TrimSpace(t.EventDate) {
		return false
	}
	if strings.TrimSpace(candidate.EventTime) != strings.TrimSpace(t.EventTime) {
		return false
	}
	if match.Normalize(candidate.SeatRow) != match.Normalize(t.SeatRow) {
		return false
	}
	if match.Normalize(candidate.Seat) != match.Normalize(t.Seat) {
		return false
	}
	return match.Normalize(candidate.Section) == match.Normalize(t.Section)
}
