package raceservice

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
)

// nopDriver backs a bun.DB whose transactions succeed without a server;
// every data access goes through the fakes.
type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return &nopConn{}, nil }

type nopConn struct{}

func (*nopConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("unexpected query on transaction stub")
}
func (*nopConn) Close() error              { return nil }
func (*nopConn) Begin() (driver.Tx, error) { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

var registerNopDriver sync.Once

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	registerNopDriver.Do(func() { sql.Register("ingest-test", nopDriver{}) })
	sqldb, err := sql.Open("ingest-test", "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

// FakeRiderRepository is an in-memory racedb.RiderRepository.
type FakeRiderRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*racedb.Rider
	byName map[string]int64 // lowercased name
}

func NewFakeRiderRepository() *FakeRiderRepository {
	return &FakeRiderRepository{
		nextID: 1,
		byID:   make(map[int64]*racedb.Rider),
		byName: make(map[string]int64),
	}
}

// Add registers a rider under a fixed ID for test setup.
func (f *FakeRiderRepository) Add(id int64, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id] = &racedb.Rider{ID: id, Name: name, IsActive: true}
	f.byName[strings.ToLower(name)] = id
	if id >= f.nextID {
		f.nextID = id + 1
	}
}

func (f *FakeRiderRepository) UpsertStartlist(ctx context.Context, db bun.IDB, riders []*racedb.Rider) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rider := range riders {
		key := strings.ToLower(rider.Name)
		id, ok := f.byName[key]
		if !ok {
			id = f.nextID
			f.nextID++
			f.byName[key] = id
		}
		rider.ID = id
		f.byID[id] = rider
	}
	return len(riders), nil
}

func (f *FakeRiderRepository) GetByID(ctx context.Context, db bun.IDB, id int64) (*racedb.Rider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rider, ok := f.byID[id]
	if !ok {
		return nil, racedb.ErrRiderNotFound
	}
	return rider, nil
}

func (f *FakeRiderRepository) GetByIDs(ctx context.Context, db bun.IDB, ids []int64) (map[int64]*racedb.Rider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]*racedb.Rider, len(ids))
	for _, id := range ids {
		if rider, ok := f.byID[id]; ok {
			out[id] = rider
		}
	}
	return out, nil
}

func (f *FakeRiderRepository) ListActive(ctx context.Context, db bun.IDB) ([]*racedb.Rider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*racedb.Rider
	for _, rider := range f.byID {
		if rider.IsActive {
			out = append(out, rider)
		}
	}
	return out, nil
}

func (f *FakeRiderRepository) ResolveNames(ctx context.Context, db bun.IDB, names []string) (map[string]int64, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resolved := make(map[string]int64)
	var missing []string
	seenMissing := make(map[string]bool)
	for _, name := range names {
		if id, ok := f.byName[strings.ToLower(name)]; ok {
			resolved[name] = id
		} else if !seenMissing[name] {
			seenMissing[name] = true
			missing = append(missing, name)
		}
	}
	return resolved, missing, nil
}

// FakeStageRepository is an in-memory racedb.StageRepository.
type FakeStageRepository struct {
	mu     sync.Mutex
	stages map[int]*racedb.Stage
	facts  map[int]*racedb.StageFact

	UpsertStageFactsFunc func(ctx context.Context, db bun.IDB, facts *racedb.StageFact) error
}

func NewFakeStageRepository() *FakeStageRepository {
	return &FakeStageRepository{
		stages: make(map[int]*racedb.Stage),
		facts:  make(map[int]*racedb.StageFact),
	}
}

func (f *FakeStageRepository) UpsertStage(ctx context.Context, db bun.IDB, stage *racedb.Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.stages[stage.StageNumber]; ok {
		stage.IsComplete = existing.IsComplete
	}
	f.stages[stage.StageNumber] = stage
	return nil
}

func (f *FakeStageRepository) GetStage(ctx context.Context, db bun.IDB, stageNumber int) (*racedb.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stage, ok := f.stages[stageNumber]
	if !ok {
		return nil, racedb.ErrStageNotFound
	}
	return stage, nil
}

func (f *FakeStageRepository) ListStages(ctx context.Context, db bun.IDB) ([]*racedb.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*racedb.Stage, 0, len(f.stages))
	for _, stage := range f.stages {
		out = append(out, stage)
	}
	return out, nil
}

func (f *FakeStageRepository) HighestCompleteStage(ctx context.Context, db bun.IDB) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	highest := 0
	for n, stage := range f.stages {
		if stage.IsComplete && n > highest {
			highest = n
		}
	}
	return highest, nil
}

func (f *FakeStageRepository) CountIncompleteBefore(ctx context.Context, db bun.IDB, stageNumber int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for n, stage := range f.stages {
		if n < stageNumber && !stage.IsComplete {
			count++
		}
	}
	return count, nil
}

func (f *FakeStageRepository) MarkComplete(ctx context.Context, db bun.IDB, stageNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stage, ok := f.stages[stageNumber]
	if !ok {
		return racedb.ErrStageNotFound
	}
	stage.IsComplete = true
	return nil
}

func (f *FakeStageRepository) UpsertStageFacts(ctx context.Context, db bun.IDB, facts *racedb.StageFact) error {
	if f.UpsertStageFactsFunc != nil {
		return f.UpsertStageFactsFunc(ctx, db, facts)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.facts[facts.StageNumber] = facts
	return nil
}

func (f *FakeStageRepository) GetStageFacts(ctx context.Context, db bun.IDB, stageNumber int) (*racedb.StageFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	facts, ok := f.facts[stageNumber]
	if !ok {
		return nil, racedb.ErrStageFactsNotFound
	}
	return facts, nil
}

func newTestService(t *testing.T) (*RaceService, *FakeRiderRepository, *FakeStageRepository) {
	t.Helper()
	riders := NewFakeRiderRepository()
	stages := NewFakeStageRepository()
	service := NewRaceService(
		newTestDB(t),
		riders,
		stages,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return service, riders, stages
}
