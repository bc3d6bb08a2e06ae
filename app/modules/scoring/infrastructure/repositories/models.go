package scoringdb

import (
	"time"

	"github.com/uptrace/bun"

	scoringdomain "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/domain"
)

// RiderStagePoints is one rider's stage breakdown. Only riders with a
// nonzero total are stored; the component columns may still be zero.
type RiderStagePoints struct {
	bun.BaseModel `bun:"table:rider_stage_points,alias:rsp"`

	StageNumber       int                  `bun:"stage_number,pk"`
	RiderID           int64                `bun:"rider_id,pk"`
	FinishPoints      scoringdomain.Points `bun:"finish_points,notnull,default:0"`
	YellowPoints      scoringdomain.Points `bun:"yellow_points,notnull,default:0"`
	GreenPoints       scoringdomain.Points `bun:"green_points,notnull,default:0"`
	PolkaDotPoints    scoringdomain.Points `bun:"polka_dot_points,notnull,default:0"`
	WhitePoints       scoringdomain.Points `bun:"white_points,notnull,default:0"`
	CombativityPoints scoringdomain.Points `bun:"combativity_points,notnull,default:0"`
	TotalPoints       scoringdomain.Points `bun:"total_points,notnull"`
	StageRank         int                  `bun:"stage_rank,notnull"`
}

// ParticipantStagePoints is one participant's settled stage row.
type ParticipantStagePoints struct {
	bun.BaseModel `bun:"table:participant_stage_points,alias:psp"`

	StageNumber      int                  `bun:"stage_number,pk"`
	ParticipantID    int64                `bun:"participant_id,pk"`
	StagePoints      scoringdomain.Points `bun:"stage_points,notnull"`
	StageRank        int                  `bun:"stage_rank,notnull"`
	CumulativePoints scoringdomain.Points `bun:"cumulative_points,notnull"`
	OverallRank      int                  `bun:"overall_rank,notnull"`
	// RankDelta is previous overall rank minus current; positive = moved up.
	RankDelta int `bun:"rank_delta,notnull,default:0"`
}

// DirectieStagePoints is one directie's settled stage row. The contributor
// lists record which participants made the top-N cut for the stage and the
// cumulative selection; the two subsets may differ.
type DirectieStagePoints struct {
	bun.BaseModel `bun:"table:directie_stage_points,alias:dsp"`

	StageNumber            int                          `bun:"stage_number,pk"`
	DirectieID             int64                        `bun:"directie_id,pk"`
	StagePoints            scoringdomain.Points         `bun:"stage_points,notnull"`
	StageRank              int                          `bun:"stage_rank,notnull"`
	CumulativePoints       scoringdomain.Points         `bun:"cumulative_points,notnull"`
	OverallRank            int                          `bun:"overall_rank,notnull"`
	RankDelta              int                          `bun:"rank_delta,notnull,default:0"`
	StageContributors      []scoringdomain.Contribution `bun:"stage_contributors,type:jsonb,notnull"`
	CumulativeContributors []scoringdomain.Contribution `bun:"cumulative_contributors,type:jsonb,notnull"`
}

// ActiveRosterEntry is one rider of a participant's active roster for a
// settled stage. Written exclusively by settlement (clear-then-insert).
type ActiveRosterEntry struct {
	bun.BaseModel `bun:"table:active_roster_entries,alias:are"`

	ID              int64 `bun:"id,pk,autoincrement"`
	StageNumber     int   `bun:"stage_number,notnull"`
	ParticipantID   int64 `bun:"participant_id,notnull"`
	RiderID         int64 `bun:"rider_id,notnull"`
	Slot            int   `bun:"slot,notnull"`
	ViaSubstitution bool  `bun:"via_substitution,notnull,default:false"`
}

// SubstitutionEvent records a backup promotion during roster resolution.
type SubstitutionEvent struct {
	bun.BaseModel `bun:"table:substitution_events,alias:se"`

	ID            string    `bun:"id,pk,type:uuid"`
	StageNumber   int       `bun:"stage_number,notnull"`
	ParticipantID int64     `bun:"participant_id,notnull"`
	RiderOutID    int64     `bun:"rider_out_id,notnull"`
	RiderInID     int64     `bun:"rider_in_id,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
