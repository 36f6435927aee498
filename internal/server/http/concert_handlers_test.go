package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
)

func TestCreateConcert_Success(t *testing.T) {
	var created *domain.Concert
	concerts := &mockConcertRepo{
		createFn: func(_ context.Context, concert *domain.Concert) error {
			created = concert
			return nil
		},
	}
	emitter := &mockEmitter{}
	srv := newTestHTTPServer(testDeps{concerts: concerts, emitter: emitter})

	body := `{
		"artist": "עומר אדם",
		"venue": "פארק הירקון",
		"event_date": "15.07.2026",
		"event_time": "21:00",
		"price_cents": 25000
	}`
	rr := serveHTTP(srv, postJSON("/api/v1/concerts", body))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp concertResponse
	decodeJSON(t, rr, &resp)
	if resp.Status != string(domain.ConcertStatusUpcoming) {
		t.Errorf("expected default upcoming status, got %s", resp.Status)
	}
	if resp.ConcertID == "" {
		t.Error("expected concert_id to be set")
	}

	if created == nil {
		t.Fatal("expected createFn to be called")
	}
	if created.Artist != "עומר אדם" {
		t.Errorf("expected artist to be stored, got %q", created.Artist)
	}

	if len(emitter.concertCreated) != 1 {
		t.Fatalf("expected one concert.created event, got %d", len(emitter.concertCreated))
	}
	if emitter.concertCreated[0].ConcertID != created.ID {
		t.Error("expected event to carry the new concert ID")
	}
}

func TestCreateConcert_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing artist", `{"venue":"פארק הירקון","event_date":"15.07.2026"}`},
		{"missing venue", `{"artist":"עומר אדם","event_date":"15.07.2026"}`},
		{"bad date format", `{"artist":"עומר אדם","venue":"פארק הירקון","event_date":"2026-07-15"}`},
		{"bad time format", `{"artist":"עומר אדם","venue":"פארק הירקון","event_date":"15.07.2026","event_time":"9pm"}`},
		{"negative price", `{"artist":"עומר אדם","venue":"פארק הירקון","event_date":"15.07.2026","price_cents":-1}`},
		{"unknown status", `{"artist":"עומר אדם","venue":"פארק הירקון","event_date":"15.07.2026","status":"postponed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestHTTPServer(testDeps{})
			rr := serveHTTP(srv, postJSON("/api/v1/concerts", tt.body))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestGetConcert_NotFound(t *testing.T) {
	srv := newTestHTTPServer(testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/concerts/"+uuid.NewString(), nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestListConcerts_Filters(t *testing.T) {
	var capturedFilter repository.ConcertFilter
	concerts := &mockConcertRepo{
		listFn: func(_ context.Context, filter repository.ConcertFilter) ([]*domain.Concert, int64, error) {
			capturedFilter = filter
			return []*domain.Concert{
				{ID: uuid.New(), Artist: "אייל גולן", Venue: "היכל מנורה", EventDate: "01.09.2026", Status: domain.ConcertStatusUpcoming},
			}, 1, nil
		},
	}
	srv := newTestHTTPServer(testDeps{concerts: concerts})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/concerts?status=upcoming&event_date=01.09.2026", nil)
	rr := serveHTTP(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	if capturedFilter.Status != domain.ConcertStatusUpcoming {
		t.Errorf("expected upcoming status filter, got %q", capturedFilter.Status)
	}
	if capturedFilter.EventDate != "01.09.2026" {
		t.Errorf("expected event_date filter, got %q", capturedFilter.EventDate)
	}

	var resp listConcertsResponse
	decodeJSON(t, rr, &resp)
	if resp.TotalCount != 1 {
		t.Errorf("expected total count 1, got %d", resp.TotalCount)
	}
	if len(resp.Concerts) != 1 || resp.Concerts[0].Artist != "אייל גולן" {
		t.Errorf("unexpected concerts payload: %+v", resp.Concerts)
	}
}

func TestMatchConcertArtist(t *testing.T) {
	concertID := uuid.New()
	concerts := &mockConcertRepo{
		getFn: func(_ context.Context, id uuid.UUID) (*domain.Concert, error) {
			if id != concertID {
				return nil, domain.ErrNotFound
			}
			return &domain.Concert{ID: concertID, Artist: "עומר אדם", Venue: "פארק הירקון", EventDate: "15.07.2026"}, nil
		},
	}

	tests := []struct {
		name        string
		artist      string
		wantMatched bool
	}{
		{"exact hebrew", "עומר אדם", true},
		{"english alias", "Omer Adam", true},
		{"minor misspelling", "omer adom", true},
		{"different artist", "אייל גולן", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestHTTPServer(testDeps{concerts: concerts})

			body := `{"artist":"` + tt.artist + `"}`
			rr := serveHTTP(srv, postJSON("/api/v1/concerts/"+concertID.String()+"/match", body))

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}

			var resp matchArtistResponse
			decodeJSON(t, rr, &resp)
			if resp.Matched != tt.wantMatched {
				t.Errorf("expected matched=%v for %q, got %v (score %.2f)", tt.wantMatched, tt.artist, resp.Matched, resp.Score)
			}
			if resp.ConcertArtist != "עומר אדם" {
				t.Errorf("expected concert artist in response, got %q", resp.ConcertArtist)
			}
		})
	}
}

func TestMatchConcertArtist_MissingArtist(t *testing.T) {
	srv := newTestHTTPServer(testDeps{})

	rr := serveHTTP(srv, postJSON("/api/v1/concerts/"+uuid.NewString()+"/match", `{}`))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}
