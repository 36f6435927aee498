package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

func TestListAliases(t *testing.T) {
	aliases := &mockAliasRepo{
		getAllFn: func(_ context.Context) (map[string][]string, error) {
			return map[string][]string{
				"omer adam":  {"עומר אדם", "omer adam"},
				"eyal golan": {"אייל גולן", "eyal golan"},
			}, nil
		},
	}
	srv := newTestHTTPServer(testDeps{aliases: aliases})

	rr := serveHTTP(srv, httptest.NewRequest(http.MethodGet, "/api/v1/admin/aliases", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp listAliasesResponse
	decodeJSON(t, rr, &resp)
	if len(resp.Groups) != 2 {
		t.Fatalf("expected two groups, got %d", len(resp.Groups))
	}
	// Groups are sorted by canonical name.
	if resp.Groups[0].Canonical != "eyal golan" || resp.Groups[1].Canonical != "omer adam" {
		t.Errorf("unexpected group ordering: %+v", resp.Groups)
	}
}

func TestAddAlias_NewGroup(t *testing.T) {
	var upserted *domain.ArtistAlias
	aliases := &mockAliasRepo{
		getFn: func(_ context.Context, _ string) (*domain.ArtistAlias, error) {
			return nil, domain.ErrNotFound
		},
		upsertFn: func(_ context.Context, alias *domain.ArtistAlias) error {
			upserted = alias
			return nil
		},
	}
	emitter := &mockEmitter{}
	srv := newTestHTTPServer(testDeps{aliases: aliases, emitter: emitter})

	body := `{"canonical":"ran danker","alias":"רן דנקר"}`
	rr := serveHTTP(srv, postJSON("/api/v1/admin/aliases", body))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	if upserted == nil {
		t.Fatal("expected upsertFn to be called")
	}
	if upserted.Canonical != "ran danker" {
		t.Errorf("expected canonical to be stored, got %q", upserted.Canonical)
	}
	if len(upserted.Aliases) != 2 || upserted.Aliases[0] != "ran danker" || upserted.Aliases[1] != "רן דנקר" {
		t.Errorf("unexpected alias set: %v", upserted.Aliases)
	}

	if len(emitter.aliasAdded) != 1 {
		t.Fatalf("expected one alias.added event, got %d", len(emitter.aliasAdded))
	}
	if emitter.aliasAdded[0].Alias != "רן דנקר" {
		t.Errorf("expected event to carry the new alias, got %q", emitter.aliasAdded[0].Alias)
	}

	// The alias is usable in the matcher immediately.
	if !srv.matcher.NamesMatch(context.Background(), "ran danker", "רן דנקר") {
		t.Error("expected new alias to match via the in-process matcher")
	}
}

func TestAddAlias_ExtendsExistingGroup(t *testing.T) {
	var upserted *domain.ArtistAlias
	aliases := &mockAliasRepo{
		getFn: func(_ context.Context, canonical string) (*domain.ArtistAlias, error) {
			return &domain.ArtistAlias{
				Canonical: canonical,
				Aliases:   []string{"עומר אדם", "omer adam"},
			}, nil
		},
		upsertFn: func(_ context.Context, alias *domain.ArtistAlias) error {
			upserted = alias
			return nil
		},
	}
	srv := newTestHTTPServer(testDeps{aliases: aliases})

	body := `{"canonical":"omer adam","alias":"omer adams"}`
	rr := serveHTTP(srv, postJSON("/api/v1/admin/aliases", body))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	if upserted == nil {
		t.Fatal("expected upsertFn to be called")
	}
	if len(upserted.Aliases) != 3 || upserted.Aliases[2] != "omer adams" {
		t.Errorf("expected alias appended to existing group, got %v", upserted.Aliases)
	}
}

func TestAddAlias_DuplicateAlias(t *testing.T) {
	aliases := &mockAliasRepo{
		getFn: func(_ context.Context, canonical string) (*domain.ArtistAlias, error) {
			return &domain.ArtistAlias{
				Canonical: canonical,
				Aliases:   []string{"עומר אדם", "omer adam"},
			}, nil
		},
	}
	srv := newTestHTTPServer(testDeps{aliases: aliases})

	body := `{"canonical":"omer adam","alias":"omer adam"}`
	rr := serveHTTP(srv, postJSON("/api/v1/admin/aliases", body))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestAddAlias_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing canonical", `{"alias":"עומר אדם"}`},
		{"missing alias", `{"canonical":"omer adam"}`},
		{"blank canonical", `{"canonical":"   ","alias":"עומר אדם"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestHTTPServer(testDeps{})
			rr := serveHTTP(srv, postJSON("/api/v1/admin/aliases", tt.body))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rr.Code)
			}
		})
	}
}
