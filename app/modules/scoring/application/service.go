package scoringservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"

	pooldb "github.com/wielervrienden/tourpoule-bot/app/modules/pool/infrastructure/repositories"
	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/wielervrienden/tourpoule-bot/app/shared"
	"github.com/wielervrienden/tourpoule-bot/eventbus"
)

// Service is the settlement surface consumed by handlers and the exporter.
type Service interface {
	SettleStage(ctx context.Context, stageNumber int, force bool) (*SettlementSummary, error)
	RiderPoints(ctx context.Context, stageNumber int) ([]*scoringdb.RiderStagePoints, error)
	ParticipantStandings(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error)
	ParticipantStandingsUpTo(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error)
	DirectieStandings(ctx context.Context, stageNumber int) ([]*scoringdb.DirectieStagePoints, error)
	ActiveRoster(ctx context.Context, stageNumber int) ([]*scoringdb.ActiveRosterEntry, error)
	Substitutions(ctx context.Context) ([]*scoringdb.SubstitutionEvent, error)
}

// SettlementService recomputes all derived scoring state for a stage.
type SettlementService struct {
	db      *bun.DB
	stages  racedb.StageRepository
	pool    pooldb.PoolRepository
	rosters pooldb.RosterRepository
	repo    scoringdb.ScoringRepository

	eventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  *shared.SettlementMetrics
	tracer   trace.Tracer
	timeout  time.Duration

	// stageLocks serializes concurrent settlement of the same stage.
	stageLocks sync.Map // map[int]*sync.Mutex
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	db *bun.DB,
	stages racedb.StageRepository,
	pool pooldb.PoolRepository,
	rosters pooldb.RosterRepository,
	repo scoringdb.ScoringRepository,
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics *shared.SettlementMetrics,
	tracer trace.Tracer,
	timeout time.Duration,
) *SettlementService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &SettlementService{
		db:       db,
		stages:   stages,
		pool:     pool,
		rosters:  rosters,
		repo:     repo,
		eventBus: bus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		timeout:  timeout,
	}
}

func (s *SettlementService) lockStage(stageNumber int) func() {
	mu, _ := s.stageLocks.LoadOrStore(stageNumber, &sync.Mutex{})
	mutex := mu.(*sync.Mutex)
	mutex.Lock()
	return mutex.Unlock
}

// Read accessors over the derived tables, used by the HTTP layer and the
// snapshot exporter.

func (s *SettlementService) RiderPoints(ctx context.Context, stageNumber int) ([]*scoringdb.RiderStagePoints, error) {
	return s.repo.GetRiderStagePoints(ctx, s.db, stageNumber)
}

func (s *SettlementService) ParticipantStandings(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error) {
	return s.repo.GetParticipantStagePoints(ctx, s.db, stageNumber)
}

func (s *SettlementService) ParticipantStandingsUpTo(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error) {
	return s.repo.GetParticipantPointsUpTo(ctx, s.db, stageNumber)
}

func (s *SettlementService) DirectieStandings(ctx context.Context, stageNumber int) ([]*scoringdb.DirectieStagePoints, error) {
	return s.repo.GetDirectieStagePoints(ctx, s.db, stageNumber)
}

func (s *SettlementService) ActiveRoster(ctx context.Context, stageNumber int) ([]*scoringdb.ActiveRosterEntry, error) {
	return s.repo.GetActiveRoster(ctx, s.db, stageNumber)
}

// Substitutions returns every recorded backup promotion, ordered by stage.
func (s *SettlementService) Substitutions(ctx context.Context) ([]*scoringdb.SubstitutionEvent, error) {
	return s.repo.ListSubstitutions(ctx, s.db)
}
