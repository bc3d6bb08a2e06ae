package pooldb

import (
	"context"

	"github.com/uptrace/bun"
)

// PoolRepository handles participants and directies.
type PoolRepository interface {
	CreateDirectie(ctx context.Context, db bun.IDB, directie *Directie) error
	ListDirecties(ctx context.Context, db bun.IDB) ([]*Directie, error)
	CreateParticipant(ctx context.Context, db bun.IDB, participant *Participant) error
	GetParticipant(ctx context.Context, db bun.IDB, id int64) (*Participant, error)
	ListParticipants(ctx context.Context, db bun.IDB) ([]*Participant, error)
}

// RosterRepository handles drafted roster selections and the single-use
// backup bookkeeping that settlement maintains.
type RosterRepository interface {
	ReplaceRoster(ctx context.Context, db bun.IDB, participantID int64, selections []*RosterSelection) error
	GetRoster(ctx context.Context, db bun.IDB, participantID int64) ([]*RosterSelection, error)
	ListAllRosters(ctx context.Context, db bun.IDB) (map[int64][]*RosterSelection, error)
	MarkBackupUsed(ctx context.Context, db bun.IDB, participantID int64, stageNumber int, replacedRiderID int64) error
	ResetBackupUsage(ctx context.Context, db bun.IDB, stageNumber int) error
}
