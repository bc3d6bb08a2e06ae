package snapshotservice

import (
	"context"

	poolservice "github.com/wielervrienden/tourpoule-bot/app/modules/pool/application"
	pooldb "github.com/wielervrienden/tourpoule-bot/app/modules/pool/infrastructure/repositories"
	raceservice "github.com/wielervrienden/tourpoule-bot/app/modules/race/application"
	racedomain "github.com/wielervrienden/tourpoule-bot/app/modules/race/domain"
	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
	scoringservice "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/application"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
)

// FakeRaceService answers rider name lookups from a fixed map.
type FakeRaceService struct {
	Names map[int64]string
}

func (f *FakeRaceService) ImportStartlist(ctx context.Context, entries []raceservice.StartlistEntry) (int, error) {
	return 0, nil
}

func (f *FakeRaceService) SubmitStageResults(ctx context.Context, req raceservice.SubmitStageResultsRequest) (*raceservice.IngestResult, error) {
	return nil, nil
}

func (f *FakeRaceService) CurrentStage(ctx context.Context) (int, error) { return 0, nil }

func (f *FakeRaceService) GetStage(ctx context.Context, stageNumber int) (*racedb.Stage, error) {
	return nil, racedb.ErrStageNotFound
}

func (f *FakeRaceService) ListStages(ctx context.Context) ([]*racedb.Stage, error) { return nil, nil }

func (f *FakeRaceService) GetStageFacts(ctx context.Context, stageNumber int) (*racedomain.StageFacts, error) {
	return nil, racedb.ErrStageFactsNotFound
}

func (f *FakeRaceService) ListActiveRiders(ctx context.Context) ([]*racedb.Rider, error) {
	return nil, nil
}

func (f *FakeRaceService) RiderNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		if name, ok := f.Names[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

var _ raceservice.Service = (*FakeRaceService)(nil)

// FakePoolService serves fixed directie and participant lists.
type FakePoolService struct {
	Directies    []*pooldb.Directie
	Participants []*pooldb.Participant
}

func (f *FakePoolService) CreateDirectie(ctx context.Context, name string) (*pooldb.Directie, error) {
	return nil, nil
}

func (f *FakePoolService) ListDirecties(ctx context.Context) ([]*pooldb.Directie, error) {
	return f.Directies, nil
}

func (f *FakePoolService) CreateParticipant(ctx context.Context, name string, directieID int64) (*pooldb.Participant, error) {
	return nil, nil
}

func (f *FakePoolService) GetParticipant(ctx context.Context, id int64) (*pooldb.Participant, error) {
	return nil, pooldb.ErrParticipantNotFound
}

func (f *FakePoolService) ListParticipants(ctx context.Context) ([]*pooldb.Participant, error) {
	return f.Participants, nil
}

func (f *FakePoolService) SubmitRoster(ctx context.Context, participantID int64, mainRiderIDs []int64, backupRiderID *int64) error {
	return nil
}

func (f *FakePoolService) GetRoster(ctx context.Context, participantID int64) ([]*pooldb.RosterSelection, error) {
	return nil, nil
}

var _ poolservice.Service = (*FakePoolService)(nil)

// FakeScoringService serves settled rows keyed by stage number.
type FakeScoringService struct {
	RiderRows       map[int][]*scoringdb.RiderStagePoints
	ParticipantRows map[int][]*scoringdb.ParticipantStagePoints
	DirectieRows    map[int][]*scoringdb.DirectieStagePoints

	StandingsCalls int
	UpToCalls      int
}

func (f *FakeScoringService) SettleStage(ctx context.Context, stageNumber int, force bool) (*scoringservice.SettlementSummary, error) {
	return nil, nil
}

func (f *FakeScoringService) RiderPoints(ctx context.Context, stageNumber int) ([]*scoringdb.RiderStagePoints, error) {
	return f.RiderRows[stageNumber], nil
}

func (f *FakeScoringService) ParticipantStandings(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error) {
	f.StandingsCalls++
	return f.ParticipantRows[stageNumber], nil
}

func (f *FakeScoringService) ParticipantStandingsUpTo(ctx context.Context, stageNumber int) ([]*scoringdb.ParticipantStagePoints, error) {
	f.UpToCalls++
	var rows []*scoringdb.ParticipantStagePoints
	for stage := 1; stage <= stageNumber; stage++ {
		rows = append(rows, f.ParticipantRows[stage]...)
	}
	return rows, nil
}

func (f *FakeScoringService) DirectieStandings(ctx context.Context, stageNumber int) ([]*scoringdb.DirectieStagePoints, error) {
	return f.DirectieRows[stageNumber], nil
}

func (f *FakeScoringService) ActiveRoster(ctx context.Context, stageNumber int) ([]*scoringdb.ActiveRosterEntry, error) {
	return nil, nil
}

func (f *FakeScoringService) Substitutions(ctx context.Context) ([]*scoringdb.SubstitutionEvent, error) {
	return nil, nil
}

var _ scoringservice.Service = (*FakeScoringService)(nil)
