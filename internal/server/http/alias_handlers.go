package httpserver

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tixhub/ticket-exchange-service/internal/domain"
)

// addAliasRequest is the JSON request body for adding an artist alias.
type addAliasRequest struct {
	Canonical string `json:"canonical"`
	Alias     string `json:"alias"`
}

// listAliases handles GET /admin/aliases.
func (s *Server) listAliases(w http.ResponseWriter, r *http.Request) {
	groups, err := s.aliases.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]aliasGroupResponse, 0, len(groups))
	for canonical, aliases := range groups {
		items = append(items, aliasGroupResponse{
			Canonical: canonical,
			Aliases:   aliases,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Canonical < items[j].Canonical })

	writeJSON(w, http.StatusOK, listAliasesResponse{Groups: items})
}

// addAlias handles POST /admin/aliases.
// The new spelling joins the canonical name's alias group, takes effect in
// the in-process matcher immediately, and is persisted for other instances.
func (s *Server) addAlias(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addAliasRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	req.Canonical = strings.TrimSpace(req.Canonical)
	req.Alias = strings.TrimSpace(req.Alias)
	if req.Canonical == "" {
		writeError(w, http.StatusBadRequest, "canonical is required")
		return
	}
	if req.Alias == "" {
		writeError(w, http.StatusBadRequest, "alias is required")
		return
	}

	group, err := s.aliases.Get(ctx, req.Canonical)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		writeDomainError(w, err)
		return
	}

	aliases := []string{req.Canonical}
	if group != nil {
		aliases = group.Aliases
	}
	for _, a := range aliases {
		if a == req.Alias {
			writeError(w, http.StatusConflict, "alias already exists")
			return
		}
	}
	aliases = append(aliases, req.Alias)

	updated := &domain.ArtistAlias{
		Canonical: req.Canonical,
		Aliases:   aliases,
		UpdatedAt: time.Now(),
	}
	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.newAliasRepo(tx).Upsert(ctx, updated); err != nil {
			return err
		}
		return s.emitter.EmitAliasAdded(ctx, tx, domain.AliasAddedPayload{
			Canonical: req.Canonical,
			Alias:     req.Alias,
			AddedBy:   statusChangedBy,
		})
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Make the alias usable without waiting for the table refresh.
	s.matcher.AddAlias(req.Canonical, req.Alias)

	if s.metrics != nil {
		s.metrics.RecordAliasAdded()
	}

	writeJSON(w, http.StatusCreated, aliasGroupResponse{
		Canonical: updated.Canonical,
		Aliases:   updated.Aliases,
	})
}
