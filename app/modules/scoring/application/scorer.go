package scoringservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	racedomain "github.com/wielervrienden/tourpoule-bot/app/modules/race/domain"
	scoringdomain "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/domain"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
)

// scoreRiders computes and persists per-rider stage points from the raw
// stage facts. Only riders with a nonzero total are stored; the stage rank
// is a dense descending rank over those totals.
func (s *SettlementService) scoreRiders(
	ctx context.Context,
	db bun.IDB,
	facts *racedomain.StageFacts,
) (map[int64]scoringdomain.Points, error) {
	breakdowns := scoringdomain.ScoreStage(facts)

	ranked := make([]scoringdomain.Ranked, 0, len(breakdowns))
	totals := make(map[int64]scoringdomain.Points, len(breakdowns))
	for riderID, b := range breakdowns {
		total := b.Total()
		totals[riderID] = total
		ranked = append(ranked, scoringdomain.Ranked{ID: riderID, Score: total})
	}
	ranks := scoringdomain.DenseRank(ranked)

	rows := make([]*scoringdb.RiderStagePoints, 0, len(breakdowns))
	for riderID, b := range breakdowns {
		rows = append(rows, &scoringdb.RiderStagePoints{
			StageNumber:       facts.StageNumber,
			RiderID:           riderID,
			FinishPoints:      b.Finish,
			YellowPoints:      b.Yellow,
			GreenPoints:       b.Green,
			PolkaDotPoints:    b.PolkaDot,
			WhitePoints:       b.White,
			CombativityPoints: b.Combativity,
			TotalPoints:       b.Total(),
			StageRank:         ranks[riderID],
		})
	}

	if err := s.repo.ReplaceRiderStagePoints(ctx, db, facts.StageNumber, rows); err != nil {
		return nil, fmt.Errorf("failed to persist rider points: %w", err)
	}

	return totals, nil
}
