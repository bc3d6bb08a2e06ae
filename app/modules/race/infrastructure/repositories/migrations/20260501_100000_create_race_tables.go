package racemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating riders, stages and stage_facts tables...")

		if _, err := db.NewCreateTable().Model((*racedb.Rider)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*racedb.Stage)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*racedb.StageFact)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_riders_name_lower ON riders (LOWER(name))").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_stages_is_complete ON stages (is_complete, stage_number)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Race tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping race tables...")

		if _, err := db.NewDropTable().Model((*racedb.StageFact)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*racedb.Stage)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*racedb.Rider)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Race tables dropped successfully!")
		return nil
	})
}
