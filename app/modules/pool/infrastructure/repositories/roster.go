package pooldb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// RosterRepositoryImpl handles database operations for roster selections.
type RosterRepositoryImpl struct{}

// NewRosterRepository creates a new roster repository.
func NewRosterRepository() RosterRepository {
	return &RosterRepositoryImpl{}
}

// ReplaceRoster swaps a participant's draft wholesale. Draft submission is
// a setup operation; backup bookkeeping starts clean.
func (r *RosterRepositoryImpl) ReplaceRoster(ctx context.Context, db bun.IDB, participantID int64, selections []*RosterSelection) error {
	_, err := db.NewDelete().
		Model((*RosterSelection)(nil)).
		Where("participant_id = ?", participantID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear roster for participant %d: %w", participantID, err)
	}

	if len(selections) == 0 {
		return nil
	}

	_, err = db.NewInsert().Model(&selections).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert roster for participant %d: %w", participantID, err)
	}
	return nil
}

func (r *RosterRepositoryImpl) GetRoster(ctx context.Context, db bun.IDB, participantID int64) ([]*RosterSelection, error) {
	var selections []*RosterSelection
	err := db.NewSelect().
		Model(&selections).
		Where("participant_id = ?", participantID).
		Order("slot ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster for participant %d: %w", participantID, err)
	}
	return selections, nil
}

func (r *RosterRepositoryImpl) ListAllRosters(ctx context.Context, db bun.IDB) (map[int64][]*RosterSelection, error) {
	var selections []*RosterSelection
	err := db.NewSelect().
		Model(&selections).
		Order("participant_id ASC", "slot ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rosters: %w", err)
	}

	byParticipant := make(map[int64][]*RosterSelection)
	for _, sel := range selections {
		byParticipant[sel.ParticipantID] = append(byParticipant[sel.ParticipantID], sel)
	}
	return byParticipant, nil
}

// MarkBackupUsed consumes a participant's backup for the rest of the race.
func (r *RosterRepositoryImpl) MarkBackupUsed(ctx context.Context, db bun.IDB, participantID int64, stageNumber int, replacedRiderID int64) error {
	_, err := db.NewUpdate().
		Model((*RosterSelection)(nil)).
		Set("backup_used_stage = ?", stageNumber).
		Set("replaced_rider_id = ?", replacedRiderID).
		Where("participant_id = ?", participantID).
		Where("is_backup = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark backup used for participant %d: %w", participantID, err)
	}
	return nil
}

// ResetBackupUsage clears backup bookkeeping attributed to the given stage,
// so a forced re-settlement re-derives substitutions deterministically.
func (r *RosterRepositoryImpl) ResetBackupUsage(ctx context.Context, db bun.IDB, stageNumber int) error {
	_, err := db.NewUpdate().
		Model((*RosterSelection)(nil)).
		Set("backup_used_stage = NULL").
		Set("replaced_rider_id = NULL").
		Where("backup_used_stage = ?", stageNumber).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset backup usage for stage %d: %w", stageNumber, err)
	}
	return nil
}
