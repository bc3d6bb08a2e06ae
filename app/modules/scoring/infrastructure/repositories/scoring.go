package scoringdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// ScoringRepositoryImpl handles database operations for derived scoring state.
type ScoringRepositoryImpl struct{}

// NewScoringRepository creates a new scoring repository.
func NewScoringRepository() ScoringRepository {
	return &ScoringRepositoryImpl{}
}

func (r *ScoringRepositoryImpl) ReplaceActiveRoster(ctx context.Context, db bun.IDB, stageNumber int, entries []*ActiveRosterEntry) error {
	_, err := db.NewDelete().
		Model((*ActiveRosterEntry)(nil)).
		Where("stage_number = ?", stageNumber).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear active roster for stage %d: %w", stageNumber, err)
	}

	if len(entries) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&entries).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert active roster for stage %d: %w", stageNumber, err)
	}
	return nil
}

func (r *ScoringRepositoryImpl) GetActiveRoster(ctx context.Context, db bun.IDB, stageNumber int) ([]*ActiveRosterEntry, error) {
	var entries []*ActiveRosterEntry
	err := db.NewSelect().
		Model(&entries).
		Where("stage_number = ?", stageNumber).
		Order("participant_id ASC", "slot ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active roster for stage %d: %w", stageNumber, err)
	}
	return entries, nil
}

func (r *ScoringRepositoryImpl) ReplaceSubstitutions(ctx context.Context, db bun.IDB, stageNumber int, events []*SubstitutionEvent) error {
	_, err := db.NewDelete().
		Model((*SubstitutionEvent)(nil)).
		Where("stage_number = ?", stageNumber).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear substitutions for stage %d: %w", stageNumber, err)
	}

	if len(events) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&events).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert substitutions for stage %d: %w", stageNumber, err)
	}
	return nil
}

func (r *ScoringRepositoryImpl) ListSubstitutions(ctx context.Context, db bun.IDB) ([]*SubstitutionEvent, error) {
	var events []*SubstitutionEvent
	err := db.NewSelect().
		Model(&events).
		Order("stage_number ASC", "participant_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list substitutions: %w", err)
	}
	return events, nil
}

func (r *ScoringRepositoryImpl) ReplaceRiderStagePoints(ctx context.Context, db bun.IDB, stageNumber int, rows []*RiderStagePoints) error {
	_, err := db.NewDelete().
		Model((*RiderStagePoints)(nil)).
		Where("stage_number = ?", stageNumber).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear rider points for stage %d: %w", stageNumber, err)
	}

	if len(rows) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert rider points for stage %d: %w", stageNumber, err)
	}
	return nil
}

func (r *ScoringRepositoryImpl) GetRiderStagePoints(ctx context.Context, db bun.IDB, stageNumber int) ([]*RiderStagePoints, error) {
	var rows []*RiderStagePoints
	err := db.NewSelect().
		Model(&rows).
		Where("stage_number = ?", stageNumber).
		Order("stage_rank ASC", "rider_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rider points for stage %d: %w", stageNumber, err)
	}
	return rows, nil
}

func (r *ScoringRepositoryImpl) ReplaceParticipantStagePoints(ctx context.Context, db bun.IDB, stageNumber int, rows []*ParticipantStagePoints) error {
	_, err := db.NewDelete().
		Model((*ParticipantStagePoints)(nil)).
		Where("stage_number = ?", stageNumber).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear participant points for stage %d: %w", stageNumber, err)
	}

	if len(rows) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert participant points for stage %d: %w", stageNumber, err)
	}
	return nil
}

func (r *ScoringRepositoryImpl) GetParticipantStagePoints(ctx context.Context, db bun.IDB, stageNumber int) ([]*ParticipantStagePoints, error) {
	var rows []*ParticipantStagePoints
	err := db.NewSelect().
		Model(&rows).
		Where("stage_number = ?", stageNumber).
		Order("overall_rank ASC", "participant_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant points for stage %d: %w", stageNumber, err)
	}
	return rows, nil
}

// GetParticipantPointsUpTo loads every participant row for stages 1..N in
// one query, so cumulative folds happen in memory instead of one round
// trip per stage.
func (r *ScoringRepositoryImpl) GetParticipantPointsUpTo(ctx context.Context, db bun.IDB, stageNumber int) ([]*ParticipantStagePoints, error) {
	var rows []*ParticipantStagePoints
	err := db.NewSelect().
		Model(&rows).
		Where("stage_number <= ?", stageNumber).
		Order("stage_number ASC", "participant_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant points up to stage %d: %w", stageNumber, err)
	}
	return rows, nil
}

func (r *ScoringRepositoryImpl) ReplaceDirectieStagePoints(ctx context.Context, db bun.IDB, stageNumber int, rows []*DirectieStagePoints) error {
	_, err := db.NewDelete().
		Model((*DirectieStagePoints)(nil)).
		Where("stage_number = ?", stageNumber).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear directie points for stage %d: %w", stageNumber, err)
	}

	if len(rows) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert directie points for stage %d: %w", stageNumber, err)
	}
	return nil
}

func (r *ScoringRepositoryImpl) GetDirectieStagePoints(ctx context.Context, db bun.IDB, stageNumber int) ([]*DirectieStagePoints, error) {
	var rows []*DirectieStagePoints
	err := db.NewSelect().
		Model(&rows).
		Where("stage_number = ?", stageNumber).
		Order("overall_rank ASC", "directie_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get directie points for stage %d: %w", stageNumber, err)
	}
	return rows, nil
}
