package scoringservice

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.opentelemetry.io/otel/trace/noop"

	pooldb "github.com/wielervrienden/tourpoule-bot/app/modules/pool/infrastructure/repositories"
	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/wielervrienden/tourpoule-bot/app/shared"
)

// ------------------------
// Transaction stub
// ------------------------

// nopDriver backs a bun.DB whose transactions begin and commit without a
// server. All data access in these tests goes through the fakes, so no
// statement ever reaches the driver.
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
	registerNopDriver.Do(func() { sql.Register("settlement-test", nopDriver{}) })
	sqldb, err := sql.Open("settlement-test", "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

// ------------------------
// Fake stage repository
// ------------------------

// FakeStageRepository is an in-memory racedb.StageRepository. The Func
// fields override individual methods for failure injection.
type FakeStageRepository struct {
	mu     sync.Mutex
	stages map[int]*racedb.Stage
	facts  map[int]*racedb.StageFact

	GetStageFunc      func(ctx context.Context, db bun.IDB, stageNumber int) (*racedb.Stage, error)
	GetStageFactsFunc func(ctx context.Context, db bun.IDB, stageNumber int) (*racedb.StageFact, error)
	MarkCompleteFunc  func(ctx context.Context, db bun.IDB, stageNumber int) error
}

func NewFakeStageRepository() *FakeStageRepository {
	return &FakeStageRepository{
		stages: make(map[int]*racedb.Stage),
		facts:  make(map[int]*racedb.StageFact),
	}
}

func (f *FakeStageRepository) AddStage(stage *racedb.Stage, facts *racedb.StageFact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages[stage.StageNumber] = stage
	if facts != nil {
		f.facts[stage.StageNumber] = facts
	}
}

func (f *FakeStageRepository) UpsertStage(ctx context.Context, db bun.IDB, stage *racedb.Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages[stage.StageNumber] = stage
	return nil
}

func (f *FakeStageRepository) GetStage(ctx context.Context, db bun.IDB, stageNumber int) (*racedb.Stage, error) {
	if f.GetStageFunc != nil {
		return f.GetStageFunc(ctx, db, stageNumber)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stage, ok := f.stages[stageNumber]
	if !ok {
		return nil, racedb.ErrStageNotFound
	}
	copied := *stage
	return &copied, nil
}

func (f *FakeStageRepository) ListStages(ctx context.Context, db bun.IDB) ([]*racedb.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*racedb.Stage, 0, len(f.stages))
	for _, stage := range f.stages {
		copied := *stage
		out = append(out, &copied)
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
	if f.MarkCompleteFunc != nil {
		return f.MarkCompleteFunc(ctx, db, stageNumber)
	}
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
	f.mu.Lock()
	defer f.mu.Unlock()
	f.facts[facts.StageNumber] = facts
	return nil
}

func (f *FakeStageRepository) GetStageFacts(ctx context.Context, db bun.IDB, stageNumber int) (*racedb.StageFact, error) {
	if f.GetStageFactsFunc != nil {
		return f.GetStageFactsFunc(ctx, db, stageNumber)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	facts, ok := f.facts[stageNumber]
	if !ok {
		return nil, racedb.ErrStageFactsNotFound
	}
	return facts, nil
}

// ------------------------
// Fake pool repository
// ------------------------

type FakePoolRepository struct {
	Directies    []*pooldb.Directie
	Participants []*pooldb.Participant
}

func (f *FakePoolRepository) CreateDirectie(ctx context.Context, db bun.IDB, d *pooldb.Directie) error {
	f.Directies = append(f.Directies, d)
	return nil
}

func (f *FakePoolRepository) ListDirecties(ctx context.Context, db bun.IDB) ([]*pooldb.Directie, error) {
	return f.Directies, nil
}

func (f *FakePoolRepository) CreateParticipant(ctx context.Context, db bun.IDB, p *pooldb.Participant) error {
	f.Participants = append(f.Participants, p)
	return nil
}

func (f *FakePoolRepository) GetParticipant(ctx context.Context, db bun.IDB, id int64) (*pooldb.Participant, error) {
	for _, p := range f.Participants {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, pooldb.ErrParticipantNotFound
}

func (f *FakePoolRepository) ListParticipants(ctx context.Context, db bun.IDB) ([]*pooldb.Participant, error) {
	return f.Participants, nil
}

// ------------------------
// Fake roster repository
// ------------------------

// FakeRosterRepository keeps roster selections in memory and mirrors the
// SQL semantics of backup bookkeeping.
type FakeRosterRepository struct {
	mu         sync.Mutex
	selections map[int64][]*pooldb.RosterSelection

	MarkBackupUsedFunc func(ctx context.Context, db bun.IDB, participantID int64, stageNumber int, replacedRiderID int64) error
}

func NewFakeRosterRepository() *FakeRosterRepository {
	return &FakeRosterRepository{selections: make(map[int64][]*pooldb.RosterSelection)}
}

func (f *FakeRosterRepository) ReplaceRoster(ctx context.Context, db bun.IDB, participantID int64, selections []*pooldb.RosterSelection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selections[participantID] = selections
	return nil
}

func (f *FakeRosterRepository) GetRoster(ctx context.Context, db bun.IDB, participantID int64) ([]*pooldb.RosterSelection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selections[participantID], nil
}

func (f *FakeRosterRepository) ListAllRosters(ctx context.Context, db bun.IDB) (map[int64][]*pooldb.RosterSelection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64][]*pooldb.RosterSelection, len(f.selections))
	for participantID, sels := range f.selections {
		copied := make([]*pooldb.RosterSelection, len(sels))
		for i, sel := range sels {
			c := *sel
			copied[i] = &c
		}
		out[participantID] = copied
	}
	return out, nil
}

func (f *FakeRosterRepository) MarkBackupUsed(ctx context.Context, db bun.IDB, participantID int64, stageNumber int, replacedRiderID int64) error {
	if f.MarkBackupUsedFunc != nil {
		return f.MarkBackupUsedFunc(ctx, db, participantID, stageNumber, replacedRiderID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sel := range f.selections[participantID] {
		if sel.IsBackup {
			stage := stageNumber
			rider := replacedRiderID
			sel.BackupUsedStage = &stage
			sel.ReplacedRiderID = &rider
		}
	}
	return nil
}

func (f *FakeRosterRepository) ResetBackupUsage(ctx context.Context, db bun.IDB, stageNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sels := range f.selections {
		for _, sel := range sels {
			if sel.BackupUsedStage != nil && *sel.BackupUsedStage == stageNumber {
				sel.BackupUsedStage = nil
				sel.ReplacedRiderID = nil
			}
		}
	}
	return nil
}

// BackupUsedStage reports the recorded consumption stage for a
// participant's backup, or nil.
func (f *FakeRosterRepository) BackupUsedStage(participantID int64) *int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sel := range f.selections[participantID] {
		if sel.IsBackup && sel.BackupUsedStage != nil {
			stage := *sel.BackupUsedStage
			return &stage
		}
	}
	return nil
}

// ------------------------
// Fake scoring repository
// ------------------------

// FakeScoringRepository stores the derived tables in memory, keyed by
// stage, with the same clear-then-insert behavior as the real one.
type FakeScoringRepository struct {
	mu            sync.Mutex
	activeRosters map[int][]*scoringdb.ActiveRosterEntry
	substitutions map[int][]*scoringdb.SubstitutionEvent
	riderPoints   map[int][]*scoringdb.RiderStagePoints
	participant   map[int][]*scoringdb.ParticipantStagePoints
	directie      map[int][]*scoringdb.DirectieStagePoints
	writes        int

	ReplaceRiderStagePointsFunc       func(ctx context.Context, db bun.IDB, stageNumber int, rows []*scoringdb.RiderStagePoints) error
	ReplaceParticipantStagePointsFunc func(ctx context.Context, db bun.IDB, stageNumber int, rows []*scoringdb.ParticipantStagePoints) error
	ReplaceDirectieStagePointsFunc    func(ctx context.Context, db bun.IDB, stageNumber int, rows []*scoringdb.DirectieStagePoints) error
}

func NewFakeScoringRepository() *FakeScoringRepository {
	return &FakeScoringRepository{
		activeRosters: make(map[int][]*scoringdb.ActiveRosterEntry),
		substitutions: make(map[int][]*scoringdb.SubstitutionEvent),
		riderPoints:   make(map[int][]*scoringdb.RiderStagePoints),
		participant:   make(map[int][]*scoringdb.ParticipantStagePoints),
		directie:      make(map[int][]*scoringdb.DirectieStagePoints),
	}
}

// Writes counts replace calls across all derived tables.
func (f *FakeScoringRepository) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FakeScoringRepository) ReplaceActiveRoster(ctx context.Context, db bun.IDB, stageNumber int, entries []*scoringdb.ActiveRosterEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.activeRosters[stageNumber] = entries
	return nil
}

func (f *FakeScoringRepository) GetActiveRoster(ctx context.Context, db bun.IDB, stageNumber int) ([]*scoringdb.ActiveRosterEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeRosters[stageNumber], nil
}

func (f *FakeScoringRepository) ReplaceSubstitutions(ctx context.Context, db bun.IDB, stageNumber int, events []*scoringdb.SubstitutionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.substitutions[stageNumber] = events
	return nil
}

func (f *FakeScoringRepository) ListSubstitutions(ctx context.Context, db bun.IDB) ([]*scoringdb.SubstitutionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*scoringdb.SubstitutionEvent
	for _, events := range f.substitutions {
		out = append(out, events...)
	}
	return out, nil
}

func (f *FakeScoringRepository) ReplaceRiderStagePoints(ctx context.Context, db bun.IDB, stageNumber int, rows []*scoringdb.RiderStagePoints) error {
	if f.ReplaceRiderStagePointsFunc != nil {
		return f.ReplaceRiderStagePointsFunc(ctx, db, stageNumber, rows)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.riderPoints[stageNumber] = rows
	return nil
}

func (f *FakeScoringRepository) GetRiderStagePoints(ctx context.Context, db bun.IDB, stageNumber int) ([]*scoringdb.RiderStagePoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.riderPoints[stageNumber], nil
}

func (f *FakeScoringRepository) ReplaceParticipantStagePoints(ctx context.Context, db bun.IDB, stageNumber int, rows []*scoringdb.ParticipantStagePoints) error {
	if f.ReplaceParticipantStagePointsFunc != nil {
		return f.ReplaceParticipantStagePointsFunc(ctx, db, stageNumber, rows)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.participant[stageNumber] = rows
	return nil
}

func (f *FakeScoringRepository) GetParticipantStagePoints(ctx context.Context, db bun.IDB, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.participant[stageNumber], nil
}

func (f *FakeScoringRepository) GetParticipantPointsUpTo(ctx context.Context, db bun.IDB, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*scoringdb.ParticipantStagePoints
	for stage, rows := range f.participant {
		if stage <= stageNumber {
			out = append(out, rows...)
		}
	}
	return out, nil
}

func (f *FakeScoringRepository) ReplaceDirectieStagePoints(ctx context.Context, db bun.IDB, stageNumber int, rows []*scoringdb.DirectieStagePoints) error {
	if f.ReplaceDirectieStagePointsFunc != nil {
		return f.ReplaceDirectieStagePointsFunc(ctx, db, stageNumber, rows)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	f.directie[stageNumber] = rows
	return nil
}

func (f *FakeScoringRepository) GetDirectieStagePoints(ctx context.Context, db bun.IDB, stageNumber int) ([]*scoringdb.DirectieStagePoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.directie[stageNumber], nil
}

// ------------------------
// Fake event bus
// ------------------------

type FakeEventBus struct {
	mu        sync.Mutex
	Published []*message.Message
	Topics    []string
}

func (f *FakeEventBus) Publish(ctx context.Context, topic string, msg *message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published = append(f.Published, msg)
	f.Topics = append(f.Topics, topic)
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) Close() error { return nil }

// ------------------------
// Service under test
// ------------------------

type testFixture struct {
	service *SettlementService
	stages  *FakeStageRepository
	pool    *FakePoolRepository
	rosters *FakeRosterRepository
	repo    *FakeScoringRepository
	bus     *FakeEventBus
}

func newTestService(t *testing.T) *testFixture {
	t.Helper()

	fixture := &testFixture{
		stages:  NewFakeStageRepository(),
		pool:    &FakePoolRepository{},
		rosters: NewFakeRosterRepository(),
		repo:    NewFakeScoringRepository(),
		bus:     &FakeEventBus{},
	}
	fixture.service = NewSettlementService(
		newTestDB(t),
		fixture.stages,
		fixture.pool,
		fixture.rosters,
		fixture.repo,
		fixture.bus,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		shared.NewSettlementMetrics(prometheus.NewRegistry()),
		noop.NewTracerProvider().Tracer("test"),
		5*time.Second,
	)
	return fixture
}
