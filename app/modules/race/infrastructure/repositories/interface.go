package racedb

import (
	"context"

	"github.com/uptrace/bun"
)

// RiderRepository handles rider persistence.
type RiderRepository interface {
	UpsertStartlist(ctx context.Context, db bun.IDB, riders []*Rider) (int, error)
	GetByID(ctx context.Context, db bun.IDB, id int64) (*Rider, error)
	GetByIDs(ctx context.Context, db bun.IDB, ids []int64) (map[int64]*Rider, error)
	ListActive(ctx context.Context, db bun.IDB) ([]*Rider, error)
	ResolveNames(ctx context.Context, db bun.IDB, names []string) (map[string]int64, []string, error)
}

// StageRepository handles stage and stage-fact persistence.
type StageRepository interface {
	UpsertStage(ctx context.Context, db bun.IDB, stage *Stage) error
	GetStage(ctx context.Context, db bun.IDB, stageNumber int) (*Stage, error)
	ListStages(ctx context.Context, db bun.IDB) ([]*Stage, error)
	HighestCompleteStage(ctx context.Context, db bun.IDB) (int, error)
	CountIncompleteBefore(ctx context.Context, db bun.IDB, stageNumber int) (int, error)
	MarkComplete(ctx context.Context, db bun.IDB, stageNumber int) error
	UpsertStageFacts(ctx context.Context, db bun.IDB, facts *StageFact) error
	GetStageFacts(ctx context.Context, db bun.IDB, stageNumber int) (*StageFact, error)
}
