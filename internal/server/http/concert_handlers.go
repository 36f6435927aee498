package httpserver

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
)

// Event date and time formats as printed on tickets.
var (
	eventDatePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	eventTimePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// createConcertRequest is the JSON request body for creating a concert.
type createConcertRequest struct {
	Artist     string `json:"artist"`
	Venue      string `json:"venue"`
	EventDate  string `json:"event_date"`
	EventTime  string `json:"event_time,omitempty"`
	PriceCents int64  `json:"price_cents,omitempty"`
	Status     string `json:"status,omitempty"`
}

// matchArtistRequest is the JSON request body for matching an artist name
// against a concert.
type matchArtistRequest struct {
	Artist string `json:"artist"`
}

// createConcert handles POST /concerts.
func (s *Server) createConcert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createConcertRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	req.Artist = strings.TrimSpace(req.Artist)
	req.Venue = strings.TrimSpace(req.Venue)
	if req.Artist == "" {
		writeError(w, http.StatusBadRequest, "artist is required")
		return
	}
	if req.Venue == "" {
		writeError(w, http.StatusBadRequest, "venue is required")
		return
	}
	if !eventDatePattern.MatchString(req.EventDate) {
		writeError(w, http.StatusBadRequest, "event_date must be in DD.MM.YYYY format")
		return
	}
	if req.EventTime != "" && !eventTimePattern.MatchString(req.EventTime) {
		writeError(w, http.StatusBadRequest, "event_time must be in HH:MM format")
		return
	}
	if req.PriceCents < 0 {
		writeError(w, http.StatusBadRequest, "price_cents must not be negative")
		return
	}

	status := domain.ConcertStatusUpcoming
	if req.Status != "" {
		status = domain.ConcertStatus(req.Status)
		switch status {
		case domain.ConcertStatusUpcoming, domain.ConcertStatusSoldOut, domain.ConcertStatusCancelled, domain.ConcertStatusPast:
		default:
			writeError(w, http.StatusBadRequest, "status must be one of: upcoming, sold_out, cancelled, past")
			return
		}
	}

	now := time.Now()
	concert := &domain.Concert{
		ID:         uuid.New(),
		Artist:     req.Artist,
		Venue:      req.Venue,
		EventDate:  req.EventDate,
		EventTime:  req.EventTime,
		PriceCents: req.PriceCents,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.newConcertRepo(tx).Create(ctx, concert); err != nil {
			return err
		}
		return s.emitter.EmitConcertCreated(ctx, tx, domain.ConcertCreatedPayload{
			ConcertID: concert.ID,
			Artist:    concert.Artist,
			Venue:     concert.Venue,
			EventDate: concert.EventDate,
		})
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, domainConcertToResponse(concert))
}

// getConcert handles GET /concerts/{concertID}.
func (s *Server) getConcert(w http.ResponseWriter, r *http.Request) {
	concertID, ok := parseUUID(w, chi.URLParam(r, "concertID"), "concert_id")
	if !ok {
		return
	}

	concert, err := s.concerts.Get(r.Context(), concertID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainConcertToResponse(concert))
}

// listConcerts handles GET /concerts.
func (s *Server) listConcerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, offset := parsePaginationParams(r)
	filter := repository.ConcertFilter{
		Status:    domain.ConcertStatus(r.URL.Query().Get("status")),
		EventDate: r.URL.Query().Get("event_date"),
		Limit:     limit,
		Offset:    offset,
	}

	concerts, totalCount, err := s.concerts.List(ctx, filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]concertResponse, len(concerts))
	for i, c := range concerts {
		items[i] = domainConcertToResponse(c)
	}

	writeJSON(w, http.StatusOK, listConcertsResponse{
		Concerts:      items,
		NextPageToken: encodeHTTPPageToken(offset, limit, int(totalCount)),
		TotalCount:    int(totalCount),
	})
}

// matchConcertArtist handles POST /concerts/{concertID}/match.
// It scores an artist name against the concert's listed artist using the
// alias-aware matcher.
func (s *Server) matchConcertArtist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	concertID, ok := parseUUID(w, chi.URLParam(r, "concertID"), "concert_id")
	if !ok {
		return
	}

	var req matchArtistRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	req.Artist = strings.TrimSpace(req.Artist)
	if req.Artist == "" {
		writeError(w, http.StatusBadRequest, "artist is required")
		return
	}

	concert, err := s.concerts.Get(ctx, concertID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	best, score := s.matcher.FindBestMatch(ctx, req.Artist, []string{concert.Artist})
	matched := best != ""

	if s.metrics != nil {
		s.metrics.RecordMatchAttempt(matched, score)
	}

	writeJSON(w, http.StatusOK, matchArtistResponse{
		Matched:       matched,
		Score:         score,
		ConcertArtist: concert.Artist,
	})
}
