package scoringdomain

import (
	racedomain "github.com/wielervrienden/tourpoule-bot/app/modules/race/domain"
)

// PointsBreakdown is a rider's stage score split by source.
type PointsBreakdown struct {
	Finish      Points
	Yellow      Points
	Green       Points
	PolkaDot    Points
	White       Points
	Combativity Points
}

// Total sums all components of the breakdown.
func (b *PointsBreakdown) Total() Points {
	return b.Finish + b.Yellow + b.Green + b.PolkaDot + b.White + b.Combativity
}

// ScoreStage computes the per-rider point breakdown for one stage from its
// raw facts. Riders absent from the result have zero points. Partial facts
// (missing jerseys, short finisher list) score whatever is present; the
// data-quality warning belongs to ingestion, not here.
func ScoreStage(facts *racedomain.StageFacts) map[int64]*PointsBreakdown {
	breakdowns := make(map[int64]*PointsBreakdown)

	get := func(riderID int64) *PointsBreakdown {
		b, ok := breakdowns[riderID]
		if !ok {
			b = &PointsBreakdown{}
			breakdowns[riderID] = b
		}
		return b
	}

	for _, fin := range facts.Finishers {
		if pts := PointsForFinishPosition(fin.Position); pts > 0 {
			get(fin.RiderID).Finish += pts
		}
	}

	for jersey, riderID := range facts.Jerseys {
		pts := PointsForJersey(jersey)
		if pts == 0 {
			continue
		}
		b := get(riderID)
		switch jersey {
		case racedomain.JerseyYellow:
			b.Yellow += pts
		case racedomain.JerseyGreen:
			b.Green += pts
		case racedomain.JerseyPolkaDot:
			b.PolkaDot += pts
		case racedomain.JerseyWhite:
			b.White += pts
		}
	}

	if facts.CombativityRiderID != nil {
		get(*facts.CombativityRiderID).Combativity += CombativityBonus
	}

	// Sparse result: drop riders that collected nothing.
	for riderID, b := range breakdowns {
		if b.Total() == 0 {
			delete(breakdowns, riderID)
		}
	}

	return breakdowns
}

// Contribution records one participant's share of a directie score.
type Contribution struct {
	ParticipantID int64  `json:"participant_id"`
	Points        Points `json:"points"`
}

// TopNContributions selects the top n entries by score descending (ties
// broken by ID ascending) and returns them with their summed total.
func TopNContributions(entries []Ranked, n int) ([]Contribution, Points) {
	sorted := make([]Ranked, len(entries))
	copy(sorted, entries)

	slicesSortByScoreDesc(sorted)

	if n > len(sorted) {
		n = len(sorted)
	}

	contributions := make([]Contribution, 0, n)
	var total Points
	for _, entry := range sorted[:n] {
		contributions = append(contributions, Contribution{
			ParticipantID: entry.ID,
			Points:        entry.Score,
		})
		total += entry.Score
	}
	return contributions, total
}
