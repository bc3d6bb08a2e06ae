package poolservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	pooldb "github.com/wielervrienden/tourpoule-bot/app/modules/pool/infrastructure/repositories"
	scoringdomain "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/domain"
)

// ErrInvalidRoster marks a draft submission that violates the roster rules.
var ErrInvalidRoster = errors.New("invalid roster")

// Service is the pool module's application surface.
type Service interface {
	CreateDirectie(ctx context.Context, name string) (*pooldb.Directie, error)
	ListDirecties(ctx context.Context) ([]*pooldb.Directie, error)
	CreateParticipant(ctx context.Context, name string, directieID int64) (*pooldb.Participant, error)
	GetParticipant(ctx context.Context, id int64) (*pooldb.Participant, error)
	ListParticipants(ctx context.Context) ([]*pooldb.Participant, error)
	SubmitRoster(ctx context.Context, participantID int64, mainRiderIDs []int64, backupRiderID *int64) error
	GetRoster(ctx context.Context, participantID int64) ([]*pooldb.RosterSelection, error)
}

// PoolService handles participants, directies and roster drafts.
type PoolService struct {
	db      *bun.DB
	pool    pooldb.PoolRepository
	rosters pooldb.RosterRepository
	logger  *slog.Logger
}

// NewPoolService creates a new PoolService.
func NewPoolService(db *bun.DB, pool pooldb.PoolRepository, rosters pooldb.RosterRepository, logger *slog.Logger) *PoolService {
	return &PoolService{
		db:      db,
		pool:    pool,
		rosters: rosters,
		logger:  logger,
	}
}

func (s *PoolService) CreateDirectie(ctx context.Context, name string) (*pooldb.Directie, error) {
	if name == "" {
		return nil, fmt.Errorf("directie name is required")
	}
	directie := &pooldb.Directie{Name: name}
	if err := s.pool.CreateDirectie(ctx, s.db, directie); err != nil {
		return nil, err
	}
	return directie, nil
}

func (s *PoolService) ListDirecties(ctx context.Context) ([]*pooldb.Directie, error) {
	return s.pool.ListDirecties(ctx, s.db)
}

func (s *PoolService) CreateParticipant(ctx context.Context, name string, directieID int64) (*pooldb.Participant, error) {
	if name == "" {
		return nil, fmt.Errorf("participant name is required")
	}
	participant := &pooldb.Participant{Name: name, DirectieID: directieID}
	if err := s.pool.CreateParticipant(ctx, s.db, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *PoolService) GetParticipant(ctx context.Context, id int64) (*pooldb.Participant, error) {
	return s.pool.GetParticipant(ctx, s.db, id)
}

func (s *PoolService) ListParticipants(ctx context.Context) ([]*pooldb.Participant, error) {
	return s.pool.ListParticipants(ctx, s.db)
}

// SubmitRoster replaces a participant's draft: exactly TeamSizeMain main
// riders in slot order plus an optional single backup. Draft submission is
// a setup operation, not part of per-stage settlement.
func (s *PoolService) SubmitRoster(ctx context.Context, participantID int64, mainRiderIDs []int64, backupRiderID *int64) error {
	if len(mainRiderIDs) != scoringdomain.TeamSizeMain {
		return fmt.Errorf("%w: expected %d main riders, got %d",
			ErrInvalidRoster, scoringdomain.TeamSizeMain, len(mainRiderIDs))
	}

	seen := make(map[int64]bool, len(mainRiderIDs)+1)
	for _, riderID := range mainRiderIDs {
		if seen[riderID] {
			return fmt.Errorf("%w: rider %d drafted twice", ErrInvalidRoster, riderID)
		}
		seen[riderID] = true
	}
	if backupRiderID != nil && seen[*backupRiderID] {
		return fmt.Errorf("%w: backup rider %d already on main roster", ErrInvalidRoster, *backupRiderID)
	}

	if _, err := s.pool.GetParticipant(ctx, s.db, participantID); err != nil {
		return err
	}

	selections := make([]*pooldb.RosterSelection, 0, len(mainRiderIDs)+1)
	for i, riderID := range mainRiderIDs {
		selections = append(selections, &pooldb.RosterSelection{
			ParticipantID: participantID,
			RiderID:       riderID,
			Slot:          i + 1,
		})
	}
	if backupRiderID != nil {
		selections = append(selections, &pooldb.RosterSelection{
			ParticipantID: participantID,
			RiderID:       *backupRiderID,
			Slot:          scoringdomain.BackupSlot,
			IsBackup:      true,
		})
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return s.rosters.ReplaceRoster(ctx, tx, participantID, selections)
	})
	if err != nil {
		s.logger.Error("Failed to submit roster",
			slog.Int64("participant", participantID),
			slog.Any("error", err),
		)
		return err
	}

	s.logger.Info("Roster submitted",
		slog.Int64("participant", participantID),
		slog.Int("riders", len(selections)),
	)
	return nil
}

func (s *PoolService) GetRoster(ctx context.Context, participantID int64) ([]*pooldb.RosterSelection, error) {
	return s.rosters.GetRoster(ctx, s.db, participantID)
}
