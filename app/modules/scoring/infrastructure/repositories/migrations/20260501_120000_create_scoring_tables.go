package scoringmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating derived scoring tables...")

		models := []interface{}{
			(*scoringdb.RiderStagePoints)(nil),
			(*scoringdb.ParticipantStagePoints)(nil),
			(*scoringdb.DirectieStagePoints)(nil),
			(*scoringdb.ActiveRosterEntry)(nil),
			(*scoringdb.SubstitutionEvent)(nil),
		}
		for _, model := range models {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rider_points_total ON rider_stage_points (stage_number, total_points DESC)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_participant_points_cumulative ON participant_stage_points (stage_number, cumulative_points DESC)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS idx_active_roster_stage_rider ON active_roster_entries (stage_number, participant_id, slot)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_substitutions_participant ON substitution_events (participant_id)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Scoring tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping derived scoring tables...")

		models := []interface{}{
			(*scoringdb.SubstitutionEvent)(nil),
			(*scoringdb.ActiveRosterEntry)(nil),
			(*scoringdb.DirectieStagePoints)(nil),
			(*scoringdb.ParticipantStagePoints)(nil),
			(*scoringdb.RiderStagePoints)(nil),
		}
		for _, model := range models {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Scoring tables dropped successfully!")
		return nil
	})
}
