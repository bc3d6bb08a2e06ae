package scoringdomain

import (
	racedomain "github.com/wielervrienden/tourpoule-bot/app/modules/race/domain"
)

// Points is the scoring unit for riders, participants and directies.
type Points int

// Scoring rules of the pool. Every component reads these; nothing
// hardcodes a point value anywhere else.
const (
	// CombativityBonus is the flat bonus for the most-combative award.
	CombativityBonus Points = 5

	// TeamSizeMain is the number of main roster slots per participant.
	TeamSizeMain = 10
	// TeamSizeBackup is the number of backup slots per participant.
	TeamSizeBackup = 1
	// BackupSlot is the roster slot number of the backup rider.
	BackupSlot = TeamSizeMain + 1

	// DirectieTopN is how many participants count toward a directie score.
	DirectieTopN = 3
)

// finishPoints maps finish position 1..20 to points.
var finishPoints = [...]Points{25, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

// jerseyPoints maps each jersey type to its stage bonus. The yellow
// (overall leader) jersey is worth double the others.
var jerseyPoints = map[racedomain.JerseyType]Points{
	racedomain.JerseyYellow:   10,
	racedomain.JerseyGreen:    5,
	racedomain.JerseyPolkaDot: 5,
	racedomain.JerseyWhite:    5,
}

// PointsForFinishPosition returns the points for a finish position, or 0
// for positions outside the top 20.
func PointsForFinishPosition(position int) Points {
	if position < 1 || position > len(finishPoints) {
		return 0
	}
	return finishPoints[position-1]
}

// PointsForJersey returns the stage bonus for holding a jersey.
func PointsForJersey(jersey racedomain.JerseyType) Points {
	return jerseyPoints[jersey]
}
