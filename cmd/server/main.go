package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	appservice "github.com/aegisai/aegis/internal/application/service"
	"github.com/aegisai/aegis/internal/config"
	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	domainservice "github.com/aegisai/aegis/internal/domain/service"
	"github.com/aegisai/aegis/internal/infrastructure/alerting"
	"github.com/aegisai/aegis/internal/infrastructure/monitoring"
	"github.com/aegisai/aegis/internal/infrastructure/persistence/postgres"
	redispersistence "github.com/aegisai/aegis/internal/infrastructure/persistence/redis"
	"github.com/aegisai/aegis/internal/infrastructure/tasks"
	apihttp "github.com/aegisai/aegis/internal/interfaces/http"
	"github.com/aegisai/aegis/internal/interfaces/http/handlers"
	"github.com/aegisai/aegis/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize tracing", err)
	}

	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to database", err)
	}
	defer func() { _ = postgres.Close(db) }()
	if err := postgres.AutoMigrate(db); err != nil {
		appLogger.Fatal(ctx, "failed to run migrations", err)
	}

	redisClient, err := redispersistence.NewClient(ctx, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	metrics := monitoring.NewMetrics()

	mlEvents := postgres.NewMLEventRepository(db, appLogger)
	llmEvents := postgres.NewLLMEventRepository(db, appLogger)
	alerts := postgres.NewAlertRepository(db, appLogger)
	deadLetters := postgres.NewDeadLetterRepository(db, appLogger)
	health := postgres.NewHealthScoreRepository(db, appLogger)

	var profiles repository.ModelProfileRepository = postgres.NewModelProfileRepository(db, appLogger)
	profiles = redispersistence.NewCachedModelProfileRepository(profiles, redisClient, cfg.Redis.TTL(), appLogger)
	var drift repository.DriftMetricRepository = postgres.NewDriftMetricRepository(db, appLogger)
	drift = redispersistence.NewCachedDriftMetricRepository(drift, redisClient, cfg.Redis.TTL(), appLogger)

	var fanout domainservice.AlertPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := alerting.NewKafkaPublisher(cfg.Kafka, appLogger)
		defer func() { _ = kafkaPublisher.Close() }()
		fanout = kafkaPublisher
	}
	publisher := alerting.NewInstrumentedPublisher(fanout, metrics)

	driftDetector := domainservice.NewDriftDetector(mlEvents, profiles, appLogger)
	aggregator := domainservice.NewHealthAggregator(
		drift, llmEvents,
		cfg.Pipeline.HealthScoreMin, cfg.Pipeline.HealthScoreMax,
		appLogger,
	)
	alertEngine := domainservice.NewAlertEngine(
		alerts, publisher,
		cfg.Pipeline.DriftLatencyThresholdMS,
		cfg.Pipeline.AlertCooldown(),
		appLogger,
		domainservice.WithSuppressionObserver(func(alert *models.Alert) {
			metrics.RecordSuppressedAlert(alert.TenantID, alert.Type)
		}),
	)

	dispatcher := tasks.NewDispatcher(cfg.Tasks, deadLetters, metrics, appLogger)
	pipeline := appservice.NewPipelineService(
		mlEvents, llmEvents, profiles, drift, health,
		driftDetector,
		domainservice.NewMLRiskModel(),
		domainservice.NewLLMRiskModel(),
		aggregator,
		alertEngine,
		metrics,
		appLogger,
	)
	pipeline.Register(dispatcher)

	ingestion := appservice.NewIngestionService(mlEvents, llmEvents, dispatcher, metrics, appLogger)

	router := apihttp.NewRouter(
		cfg, appLogger,
		handlers.NewIngestHandler(ingestion, appLogger),
		handlers.NewHealthHandler(db, redisClient, appLogger),
		tracing, metrics,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(router.Start)
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info(context.Background(), "shutting down", logger.Fields{
			"grace": cfg.Tasks.ShutdownGrace().String(),
		})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop accepting requests first, then drain the task queues so
		// in-flight batches finish scoring.
		if err := router.Stop(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "http shutdown failed", err)
		}
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "dispatcher shutdown failed", err)
		}
		return tracing.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Fatal(context.Background(), "server exited with error", err)
	}
	appLogger.Info(context.Background(), "server stopped")
}
