// Package domain provides domain models and business logic for the Ticket Exchange Service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents the lifecycle states of a resale ticket listing.
// These values must match the database enum ticket_status.
type TicketStatus string

const (
	TicketStatusPendingReview TicketStatus = "pending_review"
	TicketStatusApproved      TicketStatus = "approved"
	TicketStatusRejected      TicketStatus = "rejected"
	TicketStatusSold          TicketStatus = "sold"
)

// IsTerminal returns true if the status represents a final state that will not change.
func (s TicketStatus) IsTerminal() bool {
	switch s {
	case TicketStatusRejected, TicketStatusSold:
		return true
	default:
		return false
	}
}

// IsValidTicketStatus reports whether s is one of the known ticket statuses.
func IsValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusPendingReview, TicketStatusApproved, TicketStatusRejected, TicketStatusSold:
		return true
	default:
		return false
	}
}

// ConcertStatus represents the lifecycle states of a concert listing.
// These values must match the database enum concert_status.
type ConcertStatus string

const (
	ConcertStatusUpcoming  ConcertStatus = "upcoming"
	ConcertStatusSoldOut   ConcertStatus = "sold_out"
	ConcertStatusCancelled ConcertStatus = "cancelled"
	ConcertStatusPast      ConcertStatus = "past"
)

// DuplicateMatchType identifies which rule flagged a submission as a duplicate.
type DuplicateMatchType string

const (
	// DuplicateMatchBarcode means an existing ticket carries the same barcode.
	DuplicateMatchBarcode DuplicateMatchType = "barcode"

	// DuplicateMatchEventDetails means artist, venue, date, time and seating
	// all match an existing ticket exactly after normalization.
	DuplicateMatchEventDetails DuplicateMatchType = "event_details"
)

// Concert is a canonical concert record that resale tickets are matched against.
type Concert struct {
	ID         uuid.UUID
	Artist     string
	Venue      string
	EventDate  string // DD.MM.YYYY as printed on tickets
	EventTime  string // HH:MM
	PriceCents int64
	Status     ConcertStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Ticket is a resale ticket listing submitted by a seller.
type Ticket struct {
	ID         uuid.UUID
	ConcertID  *uuid.UUID
	SellerID   string
	Artist     string
	Venue      string
	EventDate  string
	EventTime  string
	SeatRow    string
	Seat       string
	Section    string
	Barcode    string
	PriceCents int64
	Status     TicketStatus
	// Extraction holds the field-extraction record produced at upload time,
	// kept for admin review. Nil when the ticket was entered manually.
	Extraction  *ExtractedFields
	RejectedFor string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ArtistAlias is one entry of the persisted supplementary alias store:
// a canonical artist key and its known surface spellings.
type ArtistAlias struct {
	Canonical string
	Aliases   []string
	UpdatedAt time.Time
}
