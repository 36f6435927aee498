// Package activities implements the Temporal activities of the ticket intake
// pipeline: image recognition, field extraction, concert matching, duplicate
// checking and ticket finalization.
package activities

import (
	"github.com/google/uuid"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// RecognizeTicketTextInput is the input for the RecognizeTicketText activity.
type RecognizeTicketTextInput struct {
	// ImageBase64 is the ticket photo, base64 encoded.
	ImageBase64 string
	// MIMEType is the photo MIME type (e.g., "image/jpeg").
	MIMEType string
}

// RecognizeTicketTextOutput is the output of the RecognizeTicketText activity.
type RecognizeTicketTextOutput struct {
	// RawText is all text the vision model could read off the image.
	RawText string
	// Fields is the model's structured field guess, may be nil.
	Fields *domain.ExtractedFields
	// Model is the vision model used.
	Model string
}

// ExtractFieldsInput is the input for the ExtractFields activity.
type ExtractFieldsInput struct {
	// RawText is the OCR text to extract fields from.
	RawText string
	// VisionFields is the vision model's own field guess, merged with the
	// heuristic extraction. May be nil.
	VisionFields *domain.ExtractedFields
}

// ExtractFieldsOutput is the output of the ExtractFields activity.
type ExtractFieldsOutput struct {
	// Fields is the merged extraction record.
	Fields domain.ExtractedFields
}

// MatchConcertInput is the input for the MatchConcert activity.
type MatchConcertInput struct {
	// Artist is the extracted artist name to match.
	Artist string
}

// MatchConcertOutput is the output of the MatchConcert activity.
type MatchConcertOutput struct {
	// Matched reports whether a concert cleared the match threshold.
	Matched bool
	// ConcertID is the matched concert, zero when Matched is false.
	ConcertID uuid.UUID
	// MatchedArtist is the catalog spelling of the matched artist.
	MatchedArtist string
	// Score is the similarity score of the winning match.
	Score float64
}

// CheckDuplicateInput is the input for the CheckDuplicate activity.
type CheckDuplicateInput struct {
	// TicketID is the ticket being checked; it is excluded from the
	// comparison set so a ticket never collides with itself.
	TicketID uuid.UUID
	// Artist, Venue, EventDate, EventTime, SeatRow, Seat, Section and Barcode
	// describe the submission being checked.
	Artist    string
	Venue     string
	EventDate string
	EventTime string
	SeatRow   string
	Seat      string
	Section   string
	Barcode   string
}

// CheckDuplicateOutput is the output of the CheckDuplicate activity.
type CheckDuplicateOutput struct {
	// IsDuplicate reports whether an existing ticket matched.
	IsDuplicate bool
	// MatchType identifies the rule that matched, empty when not a duplicate.
	MatchType domain.DuplicateMatchType
	// DuplicateOf is the existing ticket, zero when not a duplicate.
	DuplicateOf uuid.UUID
}

// FinalizeTicketInput is the input for the FinalizeTicket activity.
type FinalizeTicketInput struct {
	// TicketID is the ticket being finalized.
	TicketID uuid.UUID
	// SellerID is the submitting seller, carried into emitted events.
	SellerID string
	// Extraction is the merged extraction record to persist.
	Extraction *domain.ExtractedFields
	// Matched concert, if any.
	ConcertID *uuid.UUID
	// Duplicate result from the CheckDuplicate activity.
	IsDuplicate bool
	MatchType   domain.DuplicateMatchType
	DuplicateOf uuid.UUID
}

// FinalizeTicketOutput is the output of the FinalizeTicket activity.
type FinalizeTicketOutput struct {
	// Status is the ticket status after finalization.
	Status domain.TicketStatus
}
