package poolmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	pooldb "github.com/wielervrienden/tourpoule-bot/app/modules/pool/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating directies, participants and roster_selections tables...")

		if _, err := db.NewCreateTable().Model((*pooldb.Directie)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*pooldb.Participant)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*pooldb.RosterSelection)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_participants_directie ON participants (directie_id)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS idx_roster_participant_slot ON roster_selections (participant_id, slot)").Exec(ctx); err != nil {
			return err
		}
		// One backup slot per participant, full stop.
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS idx_roster_single_backup ON roster_selections (participant_id) WHERE is_backup").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Pool tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping pool tables...")

		if _, err := db.NewDropTable().Model((*pooldb.RosterSelection)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*pooldb.Participant)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*pooldb.Directie)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Pool tables dropped successfully!")
		return nil
	})
}
