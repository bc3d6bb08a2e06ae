package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	poolservice "github.com/wielervrienden/tourpoule-bot/app/modules/pool/application"
	raceservice "github.com/wielervrienden/tourpoule-bot/app/modules/race/application"
	scoringservice "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/application"
	snapshotservice "github.com/wielervrienden/tourpoule-bot/app/modules/snapshot/application"
	"github.com/wielervrienden/tourpoule-bot/app/shared"
	"github.com/wielervrienden/tourpoule-bot/config"
	"github.com/wielervrienden/tourpoule-bot/db/bundb"
	"github.com/wielervrienden/tourpoule-bot/eventbus"
)

// App wires configuration, storage, services and transports together.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *shared.SettlementMetrics
	Tracer   trace.Tracer

	DB       *bundb.DBService
	EventBus eventbus.EventBus

	RaceService    raceservice.Service
	PoolService    poolservice.Service
	ScoringService scoringservice.Service
	Exporter       *snapshotservice.Exporter

	Router *chi.Mux

	subscriber *snapshotservice.Subscriber
	metricsSrv *http.Server
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}
	db := dbService.GetDB()

	registry := prometheus.NewRegistry()
	metrics := shared.NewSettlementMetrics(registry)
	tracer := otel.Tracer("tourpoule-bot")

	bus := eventbus.NewEventBus(logger)

	raceSvc := raceservice.NewRaceService(db, dbService.RiderDB, dbService.StageDB, logger)
	poolSvc := poolservice.NewPoolService(db, dbService.PoolDB, dbService.RosterDB, logger)
	scoringSvc := scoringservice.NewSettlementService(
		db,
		dbService.StageDB,
		dbService.PoolDB,
		dbService.RosterDB,
		dbService.ScoringDB,
		bus,
		logger,
		metrics,
		tracer,
		cfg.Settlement.Timeout,
	)

	exporter := snapshotservice.NewExporter(
		raceSvc, poolSvc, scoringSvc,
		cfg.Snapshot.Dir, cfg.Snapshot.ChartTopN, cfg.Snapshot.WriteCharts,
		logger,
	)

	a := &App{
		Config:         cfg,
		Logger:         logger,
		Registry:       registry,
		Metrics:        metrics,
		Tracer:         tracer,
		DB:             dbService,
		EventBus:       bus,
		RaceService:    raceSvc,
		PoolService:    poolSvc,
		ScoringService: scoringSvc,
		Exporter:       exporter,
		subscriber:     snapshotservice.NewSubscriber(bus, exporter, logger),
	}
	a.Router = a.newRouter()

	return a, nil
}

// Run starts the snapshot subscriber and the metrics endpoint. It returns
// immediately; the caller owns the main HTTP server lifecycle.
func (a *App) Run(ctx context.Context) {
	go func() {
		if err := a.subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error("Snapshot subscriber stopped", slog.Any("error", err))
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	a.metricsSrv = &http.Server{Addr: a.Config.Metrics.Addr, Handler: mux}
	go func() {
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("Metrics server stopped", slog.Any("error", err))
		}
	}()
}

// Close shuts down the event bus, metrics server and database connection.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.metricsSrv != nil {
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if err := a.EventBus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event bus close: %w", err))
	}
	if err := a.DB.GetDB().Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	return errors.Join(errs...)
}
