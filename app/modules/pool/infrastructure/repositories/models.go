package pooldb

import (
	"github.com/uptrace/bun"
)

// Directie is a team grouping of participants whose score aggregates its
// top-N members.
type Directie struct {
	bun.BaseModel `bun:"table:directies,alias:d"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
}

// Participant is a pool player who drafted a roster of riders.
type Participant struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID         int64  `bun:"id,pk,autoincrement"`
	Name       string `bun:"name,notnull,unique"`
	DirectieID int64  `bun:"directie_id,notnull"`
}

// RosterSelection is one drafted rider of a participant. Slots 1..10 are
// main riders; slot 11 is the single backup. BackupUsedStage records the
// stage that consumed the backup; it stays set for the rest of the race.
type RosterSelection struct {
	bun.BaseModel `bun:"table:roster_selections,alias:rs"`

	ID              int64  `bun:"id,pk,autoincrement"`
	ParticipantID   int64  `bun:"participant_id,notnull"`
	RiderID         int64  `bun:"rider_id,notnull"`
	Slot            int    `bun:"slot,notnull"`
	IsBackup        bool   `bun:"is_backup,notnull,default:false"`
	BackupUsedStage *int   `bun:"backup_used_stage,nullzero"`
	ReplacedRiderID *int64 `bun:"replaced_rider_id,nullzero"`
}
