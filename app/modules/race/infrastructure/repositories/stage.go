package racedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// StageRepositoryImpl handles database operations for stages and stage facts.
type StageRepositoryImpl struct{}

// NewStageRepository creates a new stage repository.
func NewStageRepository() StageRepository {
	return &StageRepositoryImpl{}
}

func (r *StageRepositoryImpl) UpsertStage(ctx context.Context, db bun.IDB, stage *Stage) error {
	_, err := db.NewInsert().
		Model(stage).
		On("CONFLICT (stage_number) DO UPDATE").
		Set("date = EXCLUDED.date").
		Set("distance_km = EXCLUDED.distance_km").
		Set("departure_city = EXCLUDED.departure_city").
		Set("arrival_city = EXCLUDED.arrival_city").
		Set("stage_type = EXCLUDED.stage_type").
		Set("won_how = EXCLUDED.won_how").
		Set("winning_team = EXCLUDED.winning_team").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert stage %d: %w", stage.StageNumber, err)
	}
	return nil
}

func (r *StageRepositoryImpl) GetStage(ctx context.Context, db bun.IDB, stageNumber int) (*Stage, error) {
	stage := new(Stage)
	err := db.NewSelect().Model(stage).Where("stage_number = ?", stageNumber).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage %d: %w", stageNumber, err)
	}
	return stage, nil
}

func (r *StageRepositoryImpl) ListStages(ctx context.Context, db bun.IDB) ([]*Stage, error) {
	var stages []*Stage
	err := db.NewSelect().Model(&stages).Order("stage_number ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	return stages, nil
}

// HighestCompleteStage returns the highest stage number with a completed
// settlement, or 0 when no stage has settled yet.
func (r *StageRepositoryImpl) HighestCompleteStage(ctx context.Context, db bun.IDB) (int, error) {
	var stageNumber int
	err := db.NewSelect().
		Model((*Stage)(nil)).
		ColumnExpr("COALESCE(MAX(stage_number), 0)").
		Where("is_complete = ?", true).
		Scan(ctx, &stageNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to query highest complete stage: %w", err)
	}
	return stageNumber, nil
}

// CountIncompleteBefore counts stages below stageNumber that have not
// settled. Settlement must run in stage order; a nonzero count blocks it.
func (r *StageRepositoryImpl) CountIncompleteBefore(ctx context.Context, db bun.IDB, stageNumber int) (int, error) {
	count, err := db.NewSelect().
		Model((*Stage)(nil)).
		Where("stage_number < ?", stageNumber).
		Where("is_complete = ?", false).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count incomplete stages before %d: %w", stageNumber, err)
	}
	return count, nil
}

func (r *StageRepositoryImpl) MarkComplete(ctx context.Context, db bun.IDB, stageNumber int) error {
	res, err := db.NewUpdate().
		Model((*Stage)(nil)).
		Set("is_complete = ?", true).
		Where("stage_number = ?", stageNumber).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark stage %d complete: %w", stageNumber, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrStageNotFound
	}
	return nil
}

func (r *StageRepositoryImpl) UpsertStageFacts(ctx context.Context, db bun.IDB, facts *StageFact) error {
	_, err := db.NewInsert().
		Model(facts).
		On("CONFLICT (stage_number) DO UPDATE").
		Set("finishers = EXCLUDED.finishers").
		Set("jerseys = EXCLUDED.jerseys").
		Set("combativity_rider_id = EXCLUDED.combativity_rider_id").
		Set("dnf_rider_ids = EXCLUDED.dnf_rider_ids").
		Set("dns_rider_ids = EXCLUDED.dns_rider_ids").
		Set("submitted_at = now()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert stage facts for stage %d: %w", facts.StageNumber, err)
	}
	return nil
}

func (r *StageRepositoryImpl) GetStageFacts(ctx context.Context, db bun.IDB, stageNumber int) (*StageFact, error) {
	facts := new(StageFact)
	err := db.NewSelect().Model(facts).Where("stage_number = ?", stageNumber).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageFactsNotFound
		}
		return nil, fmt.Errorf("failed to get stage facts for stage %d: %w", stageNumber, err)
	}
	return facts, nil
}
