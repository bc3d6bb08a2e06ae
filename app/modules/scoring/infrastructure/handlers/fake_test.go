package scoringhandlers

import (
	"context"

	scoringservice "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/application"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
)

// FakeScoringService is a programmable stub for the scoring service.
type FakeScoringService struct {
	SettleStageFunc              func(ctx context.Context, stageNumber int, force bool) (*scoringservice.SettlementSummary, error)
	RiderPointsFunc              func(ctx context.Context, stageNumber int) ([]*scoringdb.RiderStagePoints, error)
	ParticipantStandingsFunc     func(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error)
	ParticipantStandingsUpToFunc func(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error)
	DirectieStandingsFunc        func(ctx context.Context, stageNumber int) ([]*scoringdb.DirectieStagePoints, error)
	ActiveRosterFunc             func(ctx context.Context, stageNumber int) ([]*scoringdb.ActiveRosterEntry, error)
	SubstitutionsFunc            func(ctx context.Context) ([]*scoringdb.SubstitutionEvent, error)
}

func (f *FakeScoringService) SettleStage(ctx context.Context, stageNumber int, force bool) (*scoringservice.SettlementSummary, error) {
	if f.SettleStageFunc != nil {
		return f.SettleStageFunc(ctx, stageNumber, force)
	}
	return &scoringservice.SettlementSummary{StageNumber: stageNumber}, nil
}

func (f *FakeScoringService) RiderPoints(ctx context.Context, stageNumber int) ([]*scoringdb.RiderStagePoints, error) {
	if f.RiderPointsFunc != nil {
		return f.RiderPointsFunc(ctx, stageNumber)
	}
	return nil, nil
}

func (f *FakeScoringService) ParticipantStandings(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error) {
	if f.ParticipantStandingsFunc != nil {
		return f.ParticipantStandingsFunc(ctx, stageNumber)
	}
	return nil, nil
}

func (f *FakeScoringService) ParticipantStandingsUpTo(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error) {
	if f.ParticipantStandingsUpToFunc != nil {
		return f.ParticipantStandingsUpToFunc(ctx, stageNumber)
	}
	return nil, nil
}

func (f *FakeScoringService) DirectieStandings(ctx context.Context, stageNumber int) ([]*scoringdb.DirectieStagePoints, error) {
	if f.DirectieStandingsFunc != nil {
		return f.DirectieStandingsFunc(ctx, stageNumber)
	}
	return nil, nil
}

func (f *FakeScoringService) ActiveRoster(ctx context.Context, stageNumber int) ([]*scoringdb.ActiveRosterEntry, error) {
	if f.ActiveRosterFunc != nil {
		return f.ActiveRosterFunc(ctx, stageNumber)
	}
	return nil, nil
}

func (f *FakeScoringService) Substitutions(ctx context.Context) ([]*scoringdb.SubstitutionEvent, error) {
	if f.SubstitutionsFunc != nil {
		return f.SubstitutionsFunc(ctx)
	}
	return nil, nil
}

var _ scoringservice.Service = (*FakeScoringService)(nil)
