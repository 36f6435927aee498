// Package httpserver provides the HTTP REST API server for the ticket exchange service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/tixhub/ticket-exchange-service/internal/database"
	"github.com/tixhub/ticket-exchange-service/internal/dedup"
	"github.com/tixhub/ticket-exchange-service/internal/domain"
	"github.com/tixhub/ticket-exchange-service/internal/match"
	"github.com/tixhub/ticket-exchange-service/internal/observability"
	"github.com/tixhub/ticket-exchange-service/internal/outbox"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
	"github.com/tixhub/ticket-exchange-service/internal/temporal"
	"github.com/tixhub/ticket-exchange-service/internal/vision"
)

// WorkflowClient defines the workflow operations used by the HTTP server.
type WorkflowClient interface {
	StartIntakeWorkflow(ctx context.Context, workflowFunc interface{}, input temporal.IntakeWorkflowInput) (workflowID, runID string, err error)
}

// Database is the subset of *database.DB the HTTP server depends on:
// health reporting and transactional writes.
type Database interface {
	Health(ctx context.Context) database.HealthStatus
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// EventEmitter writes outbox events inside the caller's transaction.
// *outbox.Emitter satisfies this interface.
type EventEmitter interface {
	EmitTicketSubmitted(ctx context.Context, db database.DBTX, payload domain.TicketSubmittedPayload) error
	EmitTicketDuplicateRejected(ctx context.Context, db database.DBTX, payload domain.TicketDuplicateRejectedPayload) error
	EmitTicketStatusChanged(ctx context.Context, db database.DBTX, payload domain.TicketStatusChangedPayload) error
	EmitConcertCreated(ctx context.Context, db database.DBTX, payload domain.ConcertCreatedPayload) error
	EmitAliasAdded(ctx context.Context, db database.DBTX, payload domain.AliasAddedPayload) error
}

var _ EventEmitter = (*outbox.Emitter)(nil)

// Server is the HTTP REST API server.
type Server struct {
	router         chi.Router
	httpServer     *http.Server
	workflowClient WorkflowClient
	workflowFunc   interface{} // The Temporal workflow function reference.
	tickets        repository.TicketRepository
	concerts       repository.ConcertRepository
	aliases        repository.AliasRepository
	db             Database
	checker        *dedup.Checker
	matcher        *match.Matcher
	recognizer     vision.Recognizer
	emitter        EventEmitter
	metrics        *observability.Metrics
	logger         zerolog.Logger
	authMiddleware func(http.Handler) http.Handler
	minTextLength  int

	// Transaction-scoped repository constructors. Overridable in tests.
	newTicketRepo  func(db repository.DBTX) repository.TicketRepository
	newConcertRepo func(db repository.DBTX) repository.ConcertRepository
	newAliasRepo   func(db repository.DBTX) repository.AliasRepository
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MinTextLength is the minimum recognized-text length for extraction.
	MinTextLength int
}

// Deps bundles the server's dependencies.
//
// WorkflowClient and Recognizer may be nil: a nil workflow client disables
// asynchronous intake (submissions are processed synchronously) and a nil
// recognizer disables image recognition.
type Deps struct {
	WorkflowClient WorkflowClient
	WorkflowFunc   interface{}
	Tickets        repository.TicketRepository
	Concerts       repository.ConcertRepository
	Aliases        repository.AliasRepository
	DB             Database
	Checker        *dedup.Checker
	Matcher        *match.Matcher
	Recognizer     vision.Recognizer
	Emitter        EventEmitter
	Metrics        *observability.Metrics
	Logger         zerolog.Logger
	AuthMiddleware func(http.Handler) http.Handler
}

// NewServer creates a new HTTP server with all dependencies.
// deps.WorkflowFunc is the Temporal workflow function reference
// (e.g., workflows.TicketIntakeWorkflow) that will be passed to
// StartIntakeWorkflow.
func NewServer(cfg Config, deps Deps) *Server {
	s := &Server{
		workflowClient: deps.WorkflowClient,
		workflowFunc:   deps.WorkflowFunc,
		tickets:        deps.Tickets,
		concerts:       deps.Concerts,
		aliases:        deps.Aliases,
		db:             deps.DB,
		checker:        deps.Checker,
		matcher:        deps.Matcher,
		recognizer:     deps.Recognizer,
		emitter:        deps.Emitter,
		metrics:        deps.Metrics,
		logger:         deps.Logger.With().Str("component", "http-server").Logger(),
		authMiddleware: deps.AuthMiddleware,
		minTextLength:  cfg.MinTextLength,

		newTicketRepo: func(db repository.DBTX) repository.TicketRepository {
			return repository.NewPgTicketRepository(db)
		},
		newConcertRepo: func(db repository.DBTX) repository.ConcertRepository {
			return repository.NewPgConcertRepository(db)
		},
		newAliasRepo: func(db repository.DBTX) repository.AliasRepository {
			return repository.NewPgAliasRepository(db)
		},
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(jsonContentTypeMiddleware)

	// Health endpoints (no auth)
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tickets/extract", s.extractTicketText)
		r.Post("/tickets", s.submitTicket)
		r.Get("/tickets", s.listTickets)
		r.Get("/tickets/{ticketID}", s.getTicket)
		r.Post("/tickets/{ticketID}/duplicate-check", s.checkTicketDuplicate)

		r.Get("/concerts", s.listConcerts)
		r.Post("/concerts", s.createConcert)
		r.Get("/concerts/{concertID}", s.getConcert)
		r.Post("/concerts/{concertID}/match", s.matchConcertArtist)

		// Admin routes behind bearer auth.
		r.Group(func(r chi.Router) {
			if s.authMiddleware != nil {
				r.Use(s.authMiddleware)
			}
			r.Get("/admin/aliases", s.listAliases)
			r.Post("/admin/aliases", s.addAlias)
			r.Post("/tickets/{ticketID}/status", s.updateTicketStatus)
		})
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort log; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
