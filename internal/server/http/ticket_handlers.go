package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tixhub/ticket-exchange-service/internal/dedup"
	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/extract"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
	"github.com/tixhub/ticket-exchange-service/internal/temporal"
)

// Pagination and validation constants.
const (
	defaultPageSize    = 50
	maxPageSize        = 100
	maxRequestBodySize = 8 << 20 // 8 MB limit: submissions may carry a base64 ticket photo

	statusChangedBy = "admin"
)

// extractTicketRequest is the JSON request body for field extraction.
type extractTicketRequest struct {
	RawText     string `json:"raw_text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MIMEType    string `json:"mime_type,omitempty"`
}

// submitTicketRequest is the JSON request body for submitting a ticket listing.
type submitTicketRequest struct {
	SellerID    string `json:"seller_id"`
	Artist      string `json:"artist,omitempty"`
	Venue       string `json:"venue,omitempty"`
	EventDate   string `json:"event_date,omitempty"`
	EventTime   string `json:"event_time,omitempty"`
	SeatRow     string `json:"row,omitempty"`
	Seat        string `json:"seat,omitempty"`
	Section     string `json:"section,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	PriceCents  int64  `json:"price_cents,omitempty"`
	RawText     string `json:"raw_text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MIMEType    string `json:"mime_type,omitempty"`
}

// updateTicketStatusRequest is the JSON request body for admin status changes.
type updateTicketStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// extractTicketText handles POST /tickets/extract.
// It runs field extraction over seller-provided OCR text, optionally reading
// the text off an attached ticket photo first.
func (s *Server) extractTicketText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req extractTicketRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rawText := strings.TrimSpace(req.RawText)
	var visionFields *domain.ExtractedFields

	if req.ImageBase64 != "" {
		if s.recognizer == nil {
			writeError(w, http.StatusServiceUnavailable, "image recognition is disabled")
			return
		}
		image, mimeType, ok := decodeImage(w, req.ImageBase64, req.MIMEType)
		if !ok {
			return
		}

		start := time.Now()
		rec, err := s.recognizer.RecognizeTicket(ctx, image, mimeType)
		if err != nil {
			if s.metrics != nil {
				s.metrics.RecordVisionRequestFailed(s.recognizer.Model(), "recognition")
			}
			s.logger.Error().Err(err).Msg("image recognition failed")
			writeError(w, http.StatusBadGateway, "image recognition failed")
			return
		}
		if s.metrics != nil {
			s.metrics.RecordVisionRequest(rec.Model, time.Since(start).Seconds())
		}

		if rec.RawText != "" {
			rawText = rec.RawText
		}
		visionFields = rec.Fields
	}

	if utf8.RuneCountInString(rawText) < s.minTextLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("recognized text must be at least %d characters", s.minTextLength))
		return
	}

	if s.metrics != nil {
		s.metrics.RecordExtractionStarted()
	}

	artists, venues := s.knownCatalog(ctx)
	merged := extract.Merge(extract.NewExtractor(artists, venues).Extract(rawText), visionFields)

	if s.metrics != nil {
		s.metrics.RecordExtractionCompleted(merged.Confidence, nil)
	}

	writeJSON(w, http.StatusOK, extractResponse{
		RawText: rawText,
		Fields:  merged,
	})
}

// submitTicket handles POST /tickets.
// Structured submissions are checked for duplicates and persisted
// synchronously. Submissions with an attached photo are persisted as pending
// and handed to the intake workflow, which runs recognition, extraction,
// matching and the duplicate check before finalizing the listing.
func (s *Server) submitTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitTicketRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	req.SellerID = strings.TrimSpace(req.SellerID)
	if req.SellerID == "" {
		writeError(w, http.StatusBadRequest, "seller_id is required")
		return
	}
	if req.PriceCents < 0 {
		writeError(w, http.StatusBadRequest, "price_cents must not be negative")
		return
	}

	if req.ImageBase64 != "" {
		s.submitTicketAsync(w, r, req)
		return
	}

	req.Artist = strings.TrimSpace(req.Artist)
	if req.Artist == "" {
		writeError(w, http.StatusBadRequest, "artist is required; submit an image or extract fields first")
		return
	}

	result, err := s.checker.Check(ctx, dedup.Candidate{
		Artist:    req.Artist,
		Venue:     req.Venue,
		EventDate: req.EventDate,
		EventTime: req.EventTime,
		Barcode:   req.Barcode,
		SeatRow:   req.SeatRow,
		Seat:      req.Seat,
		Section:   req.Section,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if result.IsDuplicate {
		if s.metrics != nil {
			s.metrics.RecordDuplicateDetected(string(result.MatchType))
		}
		// Best-effort event; the rejection response does not depend on it.
		if emitErr := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
			return s.emitter.EmitTicketDuplicateRejected(ctx, tx, domain.TicketDuplicateRejectedPayload{
				SellerID:   req.SellerID,
				MatchType:  result.MatchType,
				ExistingID: result.DuplicateOf,
				Artist:     req.Artist,
				Venue:      req.Venue,
				EventDate:  req.EventDate,
			})
		}); emitErr != nil {
			s.logger.Warn().Err(emitErr).Msg("failed to record duplicate rejection event")
		}
		writeJSON(w, http.StatusConflict, duplicateErrorResponse{
			Error:      "duplicate ticket",
			MatchType:  string(result.MatchType),
			ExistingID: result.DuplicateOf.String(),
		})
		return
	}

	now := time.Now()
	ticket := &domain.Ticket{
		ID:         uuid.New(),
		SellerID:   req.SellerID,
		Artist:     req.Artist,
		Venue:      req.Venue,
		EventDate:  req.EventDate,
		EventTime:  req.EventTime,
		SeatRow:    req.SeatRow,
		Seat:       req.Seat,
		Section:    req.Section,
		Barcode:    req.Barcode,
		PriceCents: req.PriceCents,
		Status:     domain.TicketStatusPendingReview,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.newTicketRepo(tx).Create(ctx, ticket); err != nil {
			return err
		}
		return s.emitter.EmitTicketSubmitted(ctx, tx, domain.TicketSubmittedPayload{
			TicketID:   ticket.ID,
			SellerID:   ticket.SellerID,
			Artist:     ticket.Artist,
			Venue:      ticket.Venue,
			EventDate:  ticket.EventDate,
			PriceCents: ticket.PriceCents,
		})
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordTicketSubmitted()
	}

	writeJSON(w, http.StatusCreated, submitTicketResponse{
		TicketID:  ticket.ID.String(),
		Status:    string(ticket.Status),
		CreatedAt: now,
		Message:   "ticket submitted for review",
	})
}

// submitTicketAsync persists a pending ticket for a photo submission and
// starts the intake workflow.
func (s *Server) submitTicketAsync(w http.ResponseWriter, r *http.Request, req submitTicketRequest) {
	ctx := r.Context()

	if s.workflowClient == nil {
		writeError(w, http.StatusServiceUnavailable, "photo intake is disabled")
		return
	}
	if _, _, ok := decodeImage(w, req.ImageBase64, req.MIMEType); !ok {
		return
	}

	now := time.Now()
	ticket := &domain.Ticket{
		ID:         uuid.New(),
		SellerID:   req.SellerID,
		Artist:     strings.TrimSpace(req.Artist),
		Venue:      req.Venue,
		EventDate:  req.EventDate,
		EventTime:  req.EventTime,
		SeatRow:    req.SeatRow,
		Seat:       req.Seat,
		Section:    req.Section,
		Barcode:    req.Barcode,
		PriceCents: req.PriceCents,
		Status:     domain.TicketStatusPendingReview,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		// No submitted event here: the workflow emits it (or a duplicate
		// rejection) once the pipeline finishes.
		return s.newTicketRepo(tx).Create(ctx, ticket)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	workflowID, runID, err := s.workflowClient.StartIntakeWorkflow(ctx, s.workflowFunc, temporal.IntakeWorkflowInput{
		TicketID:      ticket.ID,
		SellerID:      ticket.SellerID,
		ImageBase64:   req.ImageBase64,
		ImageMIMEType: imageMIMEType(req.MIMEType),
		RawText:       strings.TrimSpace(req.RawText),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("ticket_id", ticket.ID.String()).Msg("failed to start intake workflow")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, submitTicketResponse{
		TicketID:   ticket.ID.String(),
		Status:     string(ticket.Status),
		WorkflowID: workflowID,
		RunID:      runID,
		CreatedAt:  now,
		Message:    "ticket intake started",
	})
}

// getTicket handles GET /tickets/{ticketID}.
func (s *Server) getTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := parseUUID(w, chi.URLParam(r, "ticketID"), "ticket_id")
	if !ok {
		return
	}

	ticket, err := s.tickets.Get(r.Context(), ticketID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainTicketToResponse(ticket))
}

// listTickets handles GET /tickets.
// It returns a paginated list of tickets with optional filters.
func (s *Server) listTickets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, offset := parsePaginationParams(r)
	filter := repository.TicketFilter{
		SellerID: r.URL.Query().Get("seller_id"),
		Limit:    limit,
		Offset:   offset,
	}

	if concertParam := r.URL.Query().Get("concert_id"); concertParam != "" {
		concertID, ok := parseUUID(w, concertParam, "concert_id")
		if !ok {
			return
		}
		filter.ConcertID = &concertID
	}

	// Optional status filter; multiple statuses are comma-separated.
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		for _, st := range strings.Split(statusParam, ",") {
			filter.Status = append(filter.Status, domain.TicketStatus(strings.TrimSpace(st)))
		}
	}

	if createdAfter := r.URL.Query().Get("created_after"); createdAfter != "" {
		t, parseErr := time.Parse(time.RFC3339, createdAfter)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid created_after format: expected RFC3339")
			return
		}
		filter.CreatedAfter = &t
	}
	if createdBefore := r.URL.Query().Get("created_before"); createdBefore != "" {
		t, parseErr := time.Parse(time.RFC3339, createdBefore)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid created_before format: expected RFC3339")
			return
		}
		filter.CreatedBefore = &t
	}

	tickets, totalCount, err := s.tickets.List(ctx, filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]ticketResponse, len(tickets))
	for i, t := range tickets {
		items[i] = domainTicketToResponse(t)
	}

	writeJSON(w, http.StatusOK, listTicketsResponse{
		Tickets:       items,
		NextPageToken: encodeHTTPPageToken(offset, limit, int(totalCount)),
		TotalCount:    int(totalCount),
	})
}

// checkTicketDuplicate handles POST /tickets/{ticketID}/duplicate-check.
// It re-runs the duplicate rules for a stored ticket against the rest of the
// collection, excluding the ticket itself.
func (s *Server) checkTicketDuplicate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticketID, ok := parseUUID(w, chi.URLParam(r, "ticketID"), "ticket_id")
	if !ok {
		return
	}

	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	all, err := s.tickets.ListAll(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	others := make([]*domain.Ticket, 0, len(all))
	for _, t := range all {
		if t.ID != ticketID {
			others = append(others, t)
		}
	}

	result := s.checker.CheckAgainst(dedup.Candidate{
		Artist:    ticket.Artist,
		Venue:     ticket.Venue,
		EventDate: ticket.EventDate,
		EventTime: ticket.EventTime,
		Barcode:   ticket.Barcode,
		SeatRow:   ticket.SeatRow,
		Seat:      ticket.Seat,
		Section:   ticket.Section,
	}, others)

	resp := duplicateCheckResponse{IsDuplicate: result.IsDuplicate}
	if result.IsDuplicate {
		resp.MatchType = string(result.MatchType)
		resp.DuplicateOf = result.DuplicateOf.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// updateTicketStatus handles POST /tickets/{ticketID}/status (admin).
// It transitions a ticket through its review lifecycle and records the
// matching lifecycle event.
func (s *Server) updateTicketStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticketID, ok := parseUUID(w, chi.URLParam(r, "ticketID"), "ticket_id")
	if !ok {
		return
	}

	var req updateTicketStatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	status := domain.TicketStatus(req.Status)
	if !domain.IsValidTicketStatus(status) || status == domain.TicketStatusPendingReview {
		writeError(w, http.StatusBadRequest, "status must be one of: approved, rejected, sold")
		return
	}

	err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.newTicketRepo(tx).UpdateStatus(ctx, ticketID, status, req.Reason); err != nil {
			return err
		}
		return s.emitter.EmitTicketStatusChanged(ctx, tx, domain.TicketStatusChangedPayload{
			TicketID:  ticketID,
			Status:    status,
			ChangedBy: statusChangedBy,
			Reason:    req.Reason,
		})
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if s.metrics != nil {
		switch status {
		case domain.TicketStatusApproved:
			s.metrics.RecordTicketApproved()
		case domain.TicketStatusRejected:
			s.metrics.RecordTicketRejected()
		case domain.TicketStatusSold:
			s.metrics.RecordTicketSold()
		}
	}

	writeJSON(w, http.StatusOK, statusUpdateResponse{
		TicketID: ticketID.String(),
		Status:   string(status),
	})
}

// knownCatalog returns the artist and venue names of the upcoming concert
// catalog, deduplicated. A catalog read failure degrades extraction rather
// than failing it.
func (s *Server) knownCatalog(ctx context.Context) (artists, venues []string) {
	concerts, err := s.concerts.ListUpcoming(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load concert catalog for extraction")
		return nil, nil
	}

	seenArtists := make(map[string]struct{})
	seenVenues := make(map[string]struct{})
	for _, c := range concerts {
		if _, ok := seenArtists[c.Artist]; !ok && c.Artist != "" {
			seenArtists[c.Artist] = struct{}{}
			artists = append(artists, c.Artist)
		}
		if _, ok := seenVenues[c.Venue]; !ok && c.Venue != "" {
			seenVenues[c.Venue] = struct{}{}
			venues = append(venues, c.Venue)
		}
	}
	return artists, venues
}

// decodeRequest reads and unmarshals a JSON request body, writing a 400 error
// response on failure. Returns true on success.
func decodeRequest(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	return true
}

// decodeImage validates and decodes a base64 image attachment, writing a 400
// error response on failure.
func decodeImage(w http.ResponseWriter, imageBase64, mimeType string) ([]byte, string, bool) {
	mimeType = imageMIMEType(mimeType)
	if !strings.HasPrefix(mimeType, "image/") {
		writeError(w, http.StatusBadRequest, "mime_type must be an image type")
		return nil, "", false
	}
	image, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_base64 is not valid base64")
		return nil, "", false
	}
	return image, mimeType, true
}

// imageMIMEType applies the default image MIME type.
func imageMIMEType(mimeType string) string {
	if mimeType == "" {
		return "image/jpeg"
	}
	return mimeType
}

// writeDomainError maps domain and temporal errors to appropriate HTTP status codes
// and writes a JSON error response. Internal error details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrDuplicateTicket):
		var de *domain.DuplicateTicketError
		if errors.As(err, &de) {
			writeJSON(w, http.StatusConflict, duplicateErrorResponse{
				Error:      "duplicate ticket",
				MatchType:  string(de.MatchType),
				ExistingID: de.ExistingID,
			})
		} else {
			writeError(w, http.StatusConflict, "duplicate ticket")
		}
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	case errors.Is(err, temporal.ErrWorkflowNotFound):
		writeError(w, http.StatusNotFound, "workflow not found")
	case errors.Is(err, temporal.ErrWorkflowAlreadyStarted):
		writeError(w, http.StatusConflict, "workflow already started")
	case errors.Is(err, temporal.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid input")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseUUID parses a UUID from a string, writing a 400 error response if invalid.
// Returns the parsed UUID and true on success, or uuid.Nil and false on failure.
// The parse error details are not included to avoid echoing potentially malicious input.
func parseUUID(w http.ResponseWriter, s, fieldName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a valid UUID", fieldName))
		return uuid.Nil, false
	}
	return id, true
}

// parsePaginationParams extracts page_size and page_token from query parameters.
// It applies default and maximum bounds to the page size.
func parsePaginationParams(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if pageSizeStr := r.URL.Query().Get("page_size"); pageSizeStr != "" {
		if parsed, err := strconv.Atoi(pageSizeStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if pageToken := r.URL.Query().Get("page_token"); pageToken != "" {
		decoded, err := base64.StdEncoding.DecodeString(pageToken)
		if err == nil {
			if parsed, parseErr := strconv.Atoi(string(decoded)); parseErr == nil && parsed > 0 {
				offset = parsed
			}
		}
	}

	return limit, offset
}

// encodeHTTPPageToken encodes the next offset as a base64 page token.
// Returns an empty string if there are no more results.
func encodeHTTPPageToken(offset, limit, totalCount int) string {
	nextOffset := offset + limit
	if nextOffset < totalCount {
		return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(nextOffset)))
	}
	return ""
}
