package scoringservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	scoringdomain "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/domain"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
)

// aggregateDirecties rolls participant stage rows up to directie level.
//
// The stage score takes the top-N members by this stage's score; the
// cumulative score independently takes the top-N by cumulative score. The
// two selections may pick different members, which is intentional: one
// strong stage does not buy a spot in the cumulative sum.
func (s *SettlementService) aggregateDirecties(
	ctx context.Context,
	db bun.IDB,
	stageNumber int,
	participantRows []*scoringdb.ParticipantStagePoints,
) ([]*scoringdb.DirectieStagePoints, error) {
	directies, err := s.pool.ListDirecties(ctx, db)
	if err != nil {
		return nil, err
	}
	participants, err := s.pool.ListParticipants(ctx, db)
	if err != nil {
		return nil, err
	}

	directieOf := make(map[int64]int64, len(participants))
	for _, p := range participants {
		directieOf[p.ID] = p.DirectieID
	}

	stageEntries := make(map[int64][]scoringdomain.Ranked)
	cumulativeEntries := make(map[int64][]scoringdomain.Ranked)
	for _, row := range participantRows {
		directieID, ok := directieOf[row.ParticipantID]
		if !ok {
			continue
		}
		stageEntries[directieID] = append(stageEntries[directieID],
			scoringdomain.Ranked{ID: row.ParticipantID, Score: row.StagePoints})
		cumulativeEntries[directieID] = append(cumulativeEntries[directieID],
			scoringdomain.Ranked{ID: row.ParticipantID, Score: row.CumulativePoints})
	}

	prevOverallRank := make(map[int64]int)
	if stageNumber > 1 {
		prevRows, err := s.repo.GetDirectieStagePoints(ctx, db, stageNumber-1)
		if err != nil {
			return nil, err
		}
		for _, row := range prevRows {
			prevOverallRank[row.DirectieID] = row.OverallRank
		}
	}

	type directieScores struct {
		stageContribs      []scoringdomain.Contribution
		stageTotal         scoringdomain.Points
		cumulativeContribs []scoringdomain.Contribution
		cumulativeTotal    scoringdomain.Points
	}

	scores := make(map[int64]*directieScores, len(directies))
	stageRanked := make([]scoringdomain.Ranked, 0, len(directies))
	overallRanked := make([]scoringdomain.Ranked, 0, len(directies))
	for _, d := range directies {
		ds := &directieScores{}
		ds.stageContribs, ds.stageTotal = scoringdomain.TopNContributions(stageEntries[d.ID], scoringdomain.DirectieTopN)
		ds.cumulativeContribs, ds.cumulativeTotal = scoringdomain.TopNContributions(cumulativeEntries[d.ID], scoringdomain.DirectieTopN)
		scores[d.ID] = ds
		stageRanked = append(stageRanked, scoringdomain.Ranked{ID: d.ID, Score: ds.stageTotal})
		overallRanked = append(overallRanked, scoringdomain.Ranked{ID: d.ID, Score: ds.cumulativeTotal})
	}

	stageRanks := scoringdomain.DenseRank(stageRanked)
	overallRanks := scoringdomain.DenseRank(overallRanked)

	rows := make([]*scoringdb.DirectieStagePoints, 0, len(directies))
	for _, d := range directies {
		ds := scores[d.ID]
		delta := 0
		if prev, ok := prevOverallRank[d.ID]; ok {
			delta = prev - overallRanks[d.ID]
		}
		rows = append(rows, &scoringdb.DirectieStagePoints{
			StageNumber:            stageNumber,
			DirectieID:             d.ID,
			StagePoints:            ds.stageTotal,
			StageRank:              stageRanks[d.ID],
			CumulativePoints:       ds.cumulativeTotal,
			OverallRank:            overallRanks[d.ID],
			RankDelta:              delta,
			StageContributors:      ds.stageContribs,
			CumulativeContributors: ds.cumulativeContribs,
		})
	}

	if err := s.repo.ReplaceDirectieStagePoints(ctx, db, stageNumber, rows); err != nil {
		return nil, fmt.Errorf("failed to persist directie points: %w", err)
	}

	return rows, nil
}
