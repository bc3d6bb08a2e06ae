package bundb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	pooldb "github.com/wielervrienden/tourpoule-bot/app/modules/pool/infrastructure/repositories"
	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/wielervrienden/tourpoule-bot/config"
)

// DBService bundles the bun connection with the module repositories.
type DBService struct {
	RiderDB   *racedb.RiderRepositoryImpl
	StageDB   *racedb.StageRepositoryImpl
	PoolDB    *pooldb.PoolRepositoryImpl
	RosterDB  *pooldb.RosterRepositoryImpl
	ScoringDB *scoringdb.ScoringRepositoryImpl

	db *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// NewBunDBService connects to Postgres and wires up the repositories.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	return &DBService{
		RiderDB:   &racedb.RiderRepositoryImpl{},
		StageDB:   &racedb.StageRepositoryImpl{},
		PoolDB:    &pooldb.PoolRepositoryImpl{},
		RosterDB:  &pooldb.RosterRepositoryImpl{},
		ScoringDB: &scoringdb.ScoringRepositoryImpl{},
		db:        db,
	}, nil
}
