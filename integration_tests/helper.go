package integrationtests

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun/migrate"
	"go.opentelemetry.io/otel/trace/noop"

	poolservice "github.com/wielervrienden/tourpoule-bot/app/modules/pool/application"
	poolmigrations "github.com/wielervrienden/tourpoule-bot/app/modules/pool/infrastructure/repositories/migrations"
	raceservice "github.com/wielervrienden/tourpoule-bot/app/modules/race/application"
	racemigrations "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories/migrations"
	scoringservice "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/application"
	scoringmigrations "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories/migrations"
	"github.com/wielervrienden/tourpoule-bot/app/shared"
	"github.com/wielervrienden/tourpoule-bot/config"
	"github.com/wielervrienden/tourpoule-bot/db/bundb"
	"github.com/wielervrienden/tourpoule-bot/eventbus"
	"github.com/wielervrienden/tourpoule-bot/integration_tests/containers"
)

// testEnv wires real services against a throwaway Postgres container.
type testEnv struct {
	DB      *bundb.DBService
	Bus     eventbus.EventBus
	Race    raceservice.Service
	Pool    poolservice.Service
	Scoring scoringservice.Service

	container *postgres.PostgresContainer
}

func setupTestEnv(ctx context.Context) (*testEnv, error) {
	container, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}

	dbService, err := bundb.NewBunDBService(ctx, config.PostgresConfig{DSN: dsn})
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}
	db := dbService.GetDB()

	migrators := []*migrate.Migrator{
		migrate.NewMigrator(db, racemigrations.Migrations),
		migrate.NewMigrator(db, poolmigrations.Migrations),
		migrate.NewMigrator(db, scoringmigrations.Migrations),
	}
	for _, migrator := range migrators {
		if err := migrator.Init(ctx); err != nil {
			container.Terminate(ctx)
			return nil, fmt.Errorf("failed to init migrations: %w", err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			container.Terminate(ctx)
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewEventBus(logger)
	metrics := shared.NewSettlementMetrics(prometheus.NewRegistry())
	tracer := noop.NewTracerProvider().Tracer("integration-test")

	env := &testEnv{
		DB:        dbService,
		Bus:       bus,
		Race:      raceservice.NewRaceService(db, dbService.RiderDB, dbService.StageDB, logger),
		Pool:      poolservice.NewPoolService(db, dbService.PoolDB, dbService.RosterDB, logger),
		container: container,
	}
	env.Scoring = scoringservice.NewSettlementService(
		db,
		dbService.StageDB,
		dbService.PoolDB,
		dbService.RosterDB,
		dbService.ScoringDB,
		bus,
		logger,
		metrics,
		tracer,
		30*time.Second,
	)
	return env, nil
}

func (e *testEnv) Teardown(ctx context.Context) {
	e.Bus.Close()
	e.DB.GetDB().Close()
	e.container.Terminate(ctx)
}

// riderIDsByName maps startlist names to their assigned IDs.
func (e *testEnv) riderIDsByName(ctx context.Context) (map[string]int64, error) {
	riders, err := e.Race.ListActiveRiders(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(riders))
	for _, r := range riders {
		ids[r.Name] = r.ID
	}
	return ids, nil
}
