package scoringservice

import (
	scoringdomain "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/domain"
)

// SubstitutionInfo describes one backup promotion made during settlement.
type SubstitutionInfo struct {
	ParticipantID int64 `json:"participant_id"`
	RiderOutID    int64 `json:"rider_out_id"`
	RiderInID     int64 `json:"rider_in_id"`
}

// SettlementSummary reports the outcome of a settlement call.
type SettlementSummary struct {
	StageNumber           int                  `json:"stage_number"`
	AlreadySettled        bool                 `json:"already_settled"`
	Forced                bool                 `json:"forced"`
	Substitutions         []SubstitutionInfo   `json:"substitutions"`
	ParticipantsProcessed int                  `json:"participants_processed"`
	RidersScored          int                  `json:"riders_scored"`
	TotalPointsAwarded    scoringdomain.Points `json:"total_points_awarded"`
}
