package snapshotservice

import (
	scoringdomain "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/domain"
)

// LeaderboardRow is one participant line of the exported stage leaderboard.
type LeaderboardRow struct {
	ParticipantID    int64                `json:"participant_id"`
	ParticipantName  string               `json:"participant_name"`
	DirectieName     string               `json:"directie_name"`
	StagePoints      scoringdomain.Points `json:"stage_points"`
	StageRank        int                  `json:"stage_rank"`
	CumulativePoints scoringdomain.Points `json:"cumulative_points"`
	OverallRank      int                  `json:"overall_rank"`
	RankDelta        int                  `json:"rank_delta"`
}

// RiderPointsRow is one rider line of the exported rider rankings.
type RiderPointsRow struct {
	RiderID           int64                `json:"rider_id"`
	RiderName         string               `json:"rider_name"`
	FinishPoints      scoringdomain.Points `json:"finish_points"`
	YellowPoints      scoringdomain.Points `json:"yellow_points"`
	GreenPoints       scoringdomain.Points `json:"green_points"`
	PolkaDotPoints    scoringdomain.Points `json:"polka_dot_points"`
	WhitePoints       scoringdomain.Points `json:"white_points"`
	CombativityPoints scoringdomain.Points `json:"combativity_points"`
	TotalPoints       scoringdomain.Points `json:"total_points"`
	StageRank         int                  `json:"stage_rank"`
}

// DirectieRow is one directie line of the exported directie standings.
type DirectieRow struct {
	DirectieID             int64                        `json:"directie_id"`
	DirectieName           string                       `json:"directie_name"`
	StagePoints            scoringdomain.Points         `json:"stage_points"`
	StageRank              int                          `json:"stage_rank"`
	CumulativePoints       scoringdomain.Points         `json:"cumulative_points"`
	OverallRank            int                          `json:"overall_rank"`
	RankDelta              int                          `json:"rank_delta"`
	StageContributors      []scoringdomain.Contribution `json:"stage_contributors"`
	CumulativeContributors []scoringdomain.Contribution `json:"cumulative_contributors"`
}

// StageSnapshot bundles the denormalized documents written for one stage.
type StageSnapshot struct {
	StageNumber int              `json:"stage_number"`
	Leaderboard []LeaderboardRow `json:"leaderboard"`
	Riders      []RiderPointsRow `json:"riders"`
	Directies   []DirectieRow    `json:"directies"`
}
