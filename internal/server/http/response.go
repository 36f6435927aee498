package httpserver

import (
	"time"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// Ticket response types for JSON serialization.

type submitTicketResponse struct {
	TicketID   string    `json:"ticket_id"`
	Status     string    `json:"status"`
	WorkflowID string    `json:"workflow_id,omitempty"`
	RunID      string    `json:"run_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Message    string    `json:"message"`
}

type ticketResponse struct {
	TicketID    string                  `json:"ticket_id"`
	ConcertID   string                  `json:"concert_id,omitempty"`
	SellerID    string                  `json:"seller_id"`
	Artist      string                  `json:"artist,omitempty"`
	Venue       string                  `json:"venue,omitempty"`
	EventDate   string                  `json:"event_date,omitempty"`
	EventTime   string                  `json:"event_time,omitempty"`
	SeatRow     string                  `json:"row,omitempty"`
	Seat        string                  `json:"seat,omitempty"`
	Section     string                  `json:"section,omitempty"`
	Barcode     string                  `json:"barcode,omitempty"`
	PriceCents  int64                   `json:"price_cents"`
	Status      string                  `json:"status"`
	Extraction  *domain.ExtractedFields `json:"extraction,omitempty"`
	RejectedFor string                  `json:"rejected_for,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

type listTicketsResponse struct {
	Tickets       []ticketResponse `json:"tickets"`
	NextPageToken string           `json:"next_page_token,omitempty"`
	TotalCount    int              `json:"total_count"`
}

type extractResponse struct {
	RawText string                 `json:"raw_text"`
	Fields  domain.ExtractedFields `json:"fields"`
}

type duplicateCheckResponse struct {
	IsDuplicate bool   `json:"is_duplicate"`
	MatchType   string `json:"match_type,omitempty"`
	DuplicateOf string `json:"duplicate_of,omitempty"`
}

// duplicateErrorResponse is the 409 body for submissions rejected as duplicates.
type duplicateErrorResponse struct {
	Error      string `json:"error"`
	MatchType  string `json:"match_type"`
	ExistingID string `json:"existing_id"`
}

type statusUpdateResponse struct {
	TicketID string `json:"ticket_id"`
	Status   string `json:"status"`
}

// Concert response types.

type concertResponse struct {
	ConcertID  string    `json:"concert_id"`
	Artist     string    `json:"artist"`
	Venue      string    `json:"venue"`
	EventDate  string    `json:"event_date"`
	EventTime  string    `json:"event_time,omitempty"`
	PriceCents int64     `json:"price_cents"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type listConcertsResponse struct {
	Concerts      []concertResponse `json:"concerts"`
	NextPageToken string            `json:"next_page_token,omitempty"`
	TotalCount    int               `json:"total_count"`
}

type matchArtistResponse struct {
	Matched       bool    `json:"matched"`
	Score         float64 `json:"score"`
	ConcertArtist string  `json:"concert_artist"`
}

// Alias response types.

type aliasGroupResponse struct {
	Canonical string   `json:"canonical"`
	Aliases   []string `json:"aliases"`
}

type listAliasesResponse struct {
	Groups []aliasGroupResponse `json:"groups"`
}

// Converter functions

func domainTicketToResponse(t *domain.Ticket) ticketResponse {
	resp := ticketResponse{
		TicketID:    t.ID.String(),
		SellerID:    t.SellerID,
		Artist:      t.Artist,
		Venue:       t.Venue,
		EventDate:   t.EventDate,
		EventTime:   t.EventTime,
		SeatRow:     t.SeatRow,
		Seat:        t.Seat,
		Section:     t.Section,
		Barcode:     t.Barcode,
		PriceCents:  t.PriceCents,
		Status:      string(t.Status),
		Extraction:  t.Extraction,
		RejectedFor: t.RejectedFor,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.ConcertID != nil {
		resp.ConcertID = t.ConcertID.String()
	}
	return resp
}

func domainConcertToResponse(c *domain.Concert) concertResponse {
	return concertResponse{
		ConcertID:  c.ID.String(),
		Artist:     c.Artist,
		Venue:      c.Venue,
		EventDate:  c.EventDate,
		EventTime:  c.EventTime,
		PriceCents: c.PriceCents,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
