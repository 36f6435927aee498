// Package main provides the entry point for the ticket exchange HTTP API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tixhub/ticket-exchange-service/internal/config"
	"github.com/tixhub/ticket-exchange-service/internal/database"
	"github.com/tixhub/ticket-exchange-service/internal/dedup"
	"github.com/tixhub/ticket-exchange-service/internal/match"
	"github.com/tixhub/ticket-exchange-service/internal/observability"
	"github.com/tixhub/ticket-exchange-service/internal/outbox"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
	httpserver "github.com/tixhub/ticket-exchange-service/internal/server/http"
	"github.com/tixhub/ticket-exchange-service/internal/temporal"
	"github.com/tixhub/ticket-exchange-service/internal/temporal/workflows"
	"github.com/tixhub/ticket-exchange-service/internal/vision"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("ticket-exchange-service server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	// Run migrations if configured.
	if cfg.Database.MigrationAutoRun {
		migrator, err := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			if closeErr := migrator.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close migrator")
			}
		}()

		if err := migrator.Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Create repositories.
	ticketRepo := repository.NewPgTicketRepository(db)
	concertRepo := repository.NewPgConcertRepository(db)
	aliasRepo := repository.NewPgAliasRepository(db)

	// Create the artist matcher backed by the admin alias table.
	aliasTable := match.NewAliasTable(match.AliasSourceFunc(func(ctx context.Context) (map[string][]string, error) {
		return aliasRepo.GetAll(ctx)
	}))
	matcher := match.NewMatcher(aliasTable, match.MatcherConfig{
		MatchThreshold:  cfg.Matching.NameThreshold,
		SearchThreshold: cfg.Matching.SearchThreshold,
	})

	// Periodically pick up alias changes made by other instances.
	if cfg.Matching.AliasRefreshInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Matching.AliasRefreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					aliasTable.Reload()
				}
			}
		}()
	}

	// Create the duplicate checker.
	checker := dedup.NewChecker(ticketRepo)

	// Create the vision recognizer if enabled. A nil recognizer disables
	// photo submissions at the HTTP layer.
	var recognizer vision.Recognizer
	if cfg.Vision.Enabled {
		recognizer = vision.NewClient(vision.Config{
			APIKey:         cfg.Vision.APIKey,
			Model:          cfg.Vision.Model,
			BaseURL:        cfg.Vision.BaseURL,
			Timeout:        cfg.Vision.Timeout,
			MaxRetries:     cfg.Vision.MaxRetries,
			RetryDelay:     cfg.Vision.RetryDelay,
			RateLimitRPS:   cfg.Vision.RateLimitRPS,
			RateLimitBurst: cfg.Vision.RateLimitBurst,
		})
		logger.Info().Str("model", cfg.Vision.Model).Msg("vision recognizer enabled")
	}

	// Create the outbox emitter for transactional event writes.
	emitter := outbox.NewEmitter(outbox.EmitterConfig{
		ServiceName: "ticket-exchange-service",
	}, outbox.NewPgStore())

	// Create Temporal client for the intake workflow.
	temporalClient, err := temporal.NewClient(temporal.ClientConfig{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		TaskQueue: cfg.Temporal.TaskQueue,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect to temporal: %w", err)
	}
	logger.Info().
		Str("host_port", cfg.Temporal.HostPort).
		Str("namespace", cfg.Temporal.Namespace).
		Msg("temporal client connected")

	workflowClient := temporal.NewIntakeWorkflowClient(temporalClient, cfg.Temporal.TaskQueue)
	defer workflowClient.Close()

	// Create metrics if enabled.
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("tixex")
	}

	// Create the HTTP REST API server.
	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MinTextLength:   cfg.Extraction.MinTextLength,
	}

	httpSrv := httpserver.NewServer(httpCfg, httpserver.Deps{
		WorkflowClient: workflowClient,
		WorkflowFunc:   workflows.TicketIntakeWorkflow,
		Tickets:        ticketRepo,
		Concerts:       concertRepo,
		Aliases:        aliasRepo,
		DB:             db,
		Checker:        checker,
		Matcher:        matcher,
		Recognizer:     recognizer,
		Emitter:        emitter,
		Metrics:        metrics,
		Logger:         logger,
		AuthMiddleware: httpserver.NewBearerAuthMiddleware(cfg.Admin.Token),
	})

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	// Start HTTP REST API server in background.
	go func() {
		logger.Info().
			Str("address", httpCfg.Address).
			Msg("HTTP REST API server starting")
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start metrics server if configured.
	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", httpCfg.Address)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("ticket-exchange-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down ticket-exchange-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("ticket-exchange-service shutdown complete")
	return nil
}
