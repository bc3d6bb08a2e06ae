package scoringdb

import (
	"context"

	"github.com/uptrace/bun"
)

// ScoringRepository owns all derived settlement tables. Every write is a
// per-stage clear-then-insert so the pipeline is safely re-runnable.
type ScoringRepository interface {
	// Active rosters.
	ReplaceActiveRoster(ctx context.Context, db bun.IDB, stageNumber int, entries []*ActiveRosterEntry) error
	GetActiveRoster(ctx context.Context, db bun.IDB, stageNumber int) ([]*ActiveRosterEntry, error)

	// Substitution events.
	ReplaceSubstitutions(ctx context.Context, db bun.IDB, stageNumber int, events []*SubstitutionEvent) error
	ListSubstitutions(ctx context.Context, db bun.IDB) ([]*SubstitutionEvent, error)

	// Rider points.
	ReplaceRiderStagePoints(ctx context.Context, db bun.IDB, stageNumber int, rows []*RiderStagePoints) error
	GetRiderStagePoints(ctx context.Context, db bun.IDB, stageNumber int) ([]*RiderStagePoints, error)

	// Participant points.
	ReplaceParticipantStagePoints(ctx context.Context, db bun.IDB, stageNumber int, rows []*ParticipantStagePoints) error
	GetParticipantStagePoints(ctx context.Context, db bun.IDB, stageNumber int) ([]*ParticipantStagePoints, error)
	GetParticipantPointsUpTo(ctx context.Context, db bun.IDB, stageNumber int) ([]*ParticipantStagePoints, error)

	// Directie points.
	ReplaceDirectieStagePoints(ctx context.Context, db bun.IDB, stageNumber int, rows []*DirectieStagePoints) error
	GetDirectieStagePoints(ctx context.Context, db bun.IDB, stageNumber int) ([]*DirectieStagePoints, error)
}
