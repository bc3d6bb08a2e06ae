package raceservice

import (
	"context"

	racedomain "github.com/wielervrienden/tourpoule-bot/app/modules/race/domain"
	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
)

// Service is the race module's application surface.
type Service interface {
	ImportStartlist(ctx context.Context, entries []StartlistEntry) (int, error)
	SubmitStageResults(ctx context.Context, req SubmitStageResultsRequest) (*IngestResult, error)
	CurrentStage(ctx context.Context) (int, error)
	GetStage(ctx context.Context, stageNumber int) (*racedb.Stage, error)
	ListStages(ctx context.Context) ([]*racedb.Stage, error)
	GetStageFacts(ctx context.Context, stageNumber int) (*racedomain.StageFacts, error)
	ListActiveRiders(ctx context.Context) ([]*racedb.Rider, error)
	RiderNames(ctx context.Context, ids []int64) (map[int64]string, error)
}
