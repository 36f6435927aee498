// Package main provides the entry point for the ticket intake Temporal worker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tixhub/ticket-exchange-service/internal/config"
	"github.com/tixhub/ticket-exchange-service/internal/database"
	"github.com/tixhub/ticket-exchange-service/internal/dedup"
	"github.com/tixhub/ticket-exchange-service/internal/match"
	"github.com/tixhub/ticket-exchange-service/internal/observability"
	"github.com/tixhub/ticket-exchange-service/internal/outbox"
	"github.com/tixhub/ticket-exchange-service/internal/repository"
	"github.com/tixhub/ticket-exchange-service/internal/temporal"
	"github.com/tixhub/ticket-exchange-service/internal/temporal/activities"
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
	logger = logger.With().Str("component", "worker").Logger()
	logger.Info().Msg("ticket-exchange-service worker starting")

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

	// Periodically pick up alias changes made through the admin API.
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

	// Create the vision recognizer. Intake workflows need it for photo
	// submissions; when disabled the recognition activity reports the
	// feature as unavailable.
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
	} else {
		logger.Warn().Msg("vision recognition disabled; photo intake workflows will fail recognition")
	}

	// Create the outbox emitter and store.
	store := outbox.NewPgStore()
	emitter := outbox.NewEmitter(outbox.EmitterConfig{
		ServiceName: "ticket-exchange-service",
	}, store)

	// Create metrics (optional).
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("tixex")
	}

	// Create Temporal client.
	temporalClient, err := temporal.NewClient(temporal.ClientConfig{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		TaskQueue: cfg.Temporal.TaskQueue,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect to temporal: %w", err)
	}
	defer temporalClient.Close()
	logger.Info().
		Str("host_port", cfg.Temporal.HostPort).
		Str("namespace", cfg.Temporal.Namespace).
		Msg("temporal client connected")

	// Create WorkerManager.
	workerConfig := temporal.DefaultWorkerConfig(cfg.Temporal.TaskQueue)
	manager, err := temporal.NewWorkerManager(temporalClient, workerConfig)
	if err != nil {
		return fmt.Errorf("create worker manager: %w", err)
	}

	// Register workflows.
	manager.RegisterWorkflow(workflows.TicketIntakeWorkflow)

	// Create and register all activity structs.
	visionActivities := activities.NewVisionActivities(recognizer, metrics)
	extractActivities := activities.NewExtractActivities(concertRepo, metrics)
	matchActivities := activities.NewMatchActivities(matcher, concertRepo, metrics)
	dedupActivities := activities.NewDedupActivities(checker, ticketRepo, metrics)
	ticketActivities := activities.NewTicketActivities(db, emitter, metrics)

	manager.RegisterActivity(visionActivities)
	manager.RegisterActivity(extractActivities)
	manager.RegisterActivity(matchActivities)
	manager.RegisterActivity(dedupActivities)
	manager.RegisterActivity(ticketActivities)

	// Start the outbox processor if Kafka publishing is enabled. Events
	// written by the API server and the intake activities are relayed to
	// Kafka from here.
	if cfg.Kafka.Enabled {
		writer := outbox.NewKafkaWriter(outbox.WriterConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		})
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close kafka writer")
			}
		}()

		processor := outbox.NewProcessor(db, store, writer, outbox.ProcessorConfig{
			PollInterval: cfg.Outbox.PollInterval,
			BatchSize:    cfg.Outbox.BatchSize,
			MaxRetries:   cfg.Outbox.MaxRetries,
		}, logger, metrics)

		go func() {
			if err := processor.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("outbox processor error")
			}
		}()

		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("outbox processor started")
	}

	logger.Info().
		Str("task_queue", cfg.Temporal.TaskQueue).
		Msg("starting temporal worker")

	// Start the worker and block until context is cancelled.
	if err := manager.Start(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info().Msg("worker stopped via signal")
			return nil
		}
		return fmt.Errorf("worker error: %w", err)
	}

	return nil
}
