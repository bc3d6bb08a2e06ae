package scoringservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	scoringdomain "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/domain"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
)

// aggregateParticipants folds rider stage totals into participant stage
// scores, cumulative scores, ranks and rank deltas, and persists them.
//
// Cumulative state comes from the previous stage's rows in one query; the
// fold happens in memory.
func (s *SettlementService) aggregateParticipants(
	ctx context.Context,
	db bun.IDB,
	stageNumber int,
	activeRoster []*scoringdb.ActiveRosterEntry,
	riderTotals map[int64]scoringdomain.Points,
) ([]*scoringdb.ParticipantStagePoints, error) {
	participants, err := s.pool.ListParticipants(ctx, db)
	if err != nil {
		return nil, err
	}

	stageScores := make(map[int64]scoringdomain.Points, len(participants))
	for _, entry := range activeRoster {
		// Only main slots score. A promoted backup occupies the slot it
		// filled, so it is covered here; a backup never scores as extra.
		if entry.Slot > scoringdomain.TeamSizeMain {
			continue
		}
		stageScores[entry.ParticipantID] += riderTotals[entry.RiderID]
	}

	prevCumulative := make(map[int64]scoringdomain.Points)
	prevOverallRank := make(map[int64]int)
	if stageNumber > 1 {
		prevRows, err := s.repo.GetParticipantStagePoints(ctx, db, stageNumber-1)
		if err != nil {
			return nil, err
		}
		for _, row := range prevRows {
			prevCumulative[row.ParticipantID] = row.CumulativePoints
			prevOverallRank[row.ParticipantID] = row.OverallRank
		}
	}

	stageRanked := make([]scoringdomain.Ranked, 0, len(participants))
	overallRanked := make([]scoringdomain.Ranked, 0, len(participants))
	cumulative := make(map[int64]scoringdomain.Points, len(participants))
	for _, p := range participants {
		stageScore := stageScores[p.ID]
		cum := prevCumulative[p.ID] + stageScore
		cumulative[p.ID] = cum
		stageRanked = append(stageRanked, scoringdomain.Ranked{ID: p.ID, Score: stageScore})
		overallRanked = append(overallRanked, scoringdomain.Ranked{ID: p.ID, Score: cum})
	}

	stageRanks := scoringdomain.DenseRank(stageRanked)
	overallRanks := scoringdomain.DenseRank(overallRanked)

	rows := make([]*scoringdb.ParticipantStagePoints, 0, len(participants))
	for _, p := range participants {
		delta := 0
		if prev, ok := prevOverallRank[p.ID]; ok {
			delta = prev - overallRanks[p.ID]
		}
		rows = append(rows, &scoringdb.ParticipantStagePoints{
			StageNumber:      stageNumber,
			ParticipantID:    p.ID,
			StagePoints:      stageScores[p.ID],
			StageRank:        stageRanks[p.ID],
			CumulativePoints: cumulative[p.ID],
			OverallRank:      overallRanks[p.ID],
			RankDelta:        delta,
		})
	}

	if err := s.repo.ReplaceParticipantStagePoints(ctx, db, stageNumber, rows); err != nil {
		return nil, fmt.Errorf("failed to persist participant points: %w", err)
	}

	return rows, nil
}
