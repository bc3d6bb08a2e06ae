package racedb

import (
	"time"

	"github.com/uptrace/bun"

	racedomain "github.com/wielervrienden/tourpoule-bot/app/modules/race/domain"
)

// Rider represents a rider on the race startlist.
type Rider struct {
	bun.BaseModel `bun:"table:riders,alias:r"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Name     string `bun:"name,notnull,unique"`
	Team     string `bun:"team"`
	Number   int    `bun:"number"`
	Country  string `bun:"country"`
	IsActive bool   `bun:"is_active,notnull,default:true"`
}

// Stage represents one stage of the race. IsComplete is the idempotency
// gate: it flips to true only after a successful settlement.
type Stage struct {
	bun.BaseModel `bun:"table:stages,alias:st"`

	StageNumber   int       `bun:"stage_number,pk"`
	Date          time.Time `bun:"date,nullzero"`
	DistanceKM    float64   `bun:"distance_km"`
	DepartureCity string    `bun:"departure_city"`
	ArrivalCity   string    `bun:"arrival_city"`
	StageType     string    `bun:"stage_type"`
	WonHow        string    `bun:"won_how"`
	WinningTeam   string    `bun:"winning_team"`
	IsComplete    bool      `bun:"is_complete,notnull,default:false"`
}

// StageFact stores the raw facts of a stage as submitted by ingestion.
// The list-shaped payloads live in jsonb columns; they are replaced
// wholesale on every (re)submission.
type StageFact struct {
	bun.BaseModel `bun:"table:stage_facts,alias:sf"`

	StageNumber        int                             `bun:"stage_number,pk"`
	Finishers          []racedomain.Finisher           `bun:"finishers,type:jsonb,notnull"`
	Jerseys            map[racedomain.JerseyType]int64 `bun:"jerseys,type:jsonb,notnull"`
	CombativityRiderID *int64                          `bun:"combativity_rider_id,nullzero"`
	DNFRiderIDs        []int64                         `bun:"dnf_rider_ids,type:jsonb,notnull"`
	DNSRiderIDs        []int64                         `bun:"dns_rider_ids,type:jsonb,notnull"`
	SubmittedAt        time.Time                       `bun:"submitted_at,nullzero,notnull,default:current_timestamp"`
}

// Facts converts the stored row into the domain representation.
func (sf *StageFact) Facts() *racedomain.StageFacts {
	return &racedomain.StageFacts{
		StageNumber:        sf.StageNumber,
		Finishers:          sf.Finishers,
		Jerseys:            sf.Jerseys,
		CombativityRiderID: sf.CombativityRiderID,
		DNFRiderIDs:        sf.DNFRiderIDs,
		DNSRiderIDs:        sf.DNSRiderIDs,
	}
}
