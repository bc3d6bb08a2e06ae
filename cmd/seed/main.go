package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/brianvoe/gofakeit/v7"

	poolservice "github.com/wielervrienden/tourpoule-bot/app/modules/pool/application"
	raceservice "github.com/wielervrienden/tourpoule-bot/app/modules/race/application"
	scoringdomain "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/domain"
	"github.com/wielervrienden/tourpoule-bot/config"
	"github.com/wielervrienden/tourpoule-bot/db/bundb"
)

// Seeds a local database with a believable startlist, a handful of
// directies with participants, and a drafted roster per participant.
// Deterministic under -seed so repeated runs build the same pool.
func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	seed := flag.Uint64("seed", 42, "gofakeit seed")
	riderCount := flag.Int("riders", 180, "riders on the startlist")
	directieCount := flag.Int("directies", 4, "directies to create")
	participantsPer := flag.Int("participants", 3, "participants per directie")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbService.GetDB().Close()

	faker := gofakeit.New(*seed)

	raceSvc := raceservice.NewRaceService(dbService.GetDB(), dbService.RiderDB, dbService.StageDB, logger)
	poolSvc := poolservice.NewPoolService(dbService.GetDB(), dbService.PoolDB, dbService.RosterDB, logger)

	if err := run(ctx, faker, raceSvc, poolSvc, *riderCount, *directieCount, *participantsPer, logger); err != nil {
		logger.Error("Seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	faker *gofakeit.Faker,
	raceSvc raceservice.Service,
	poolSvc poolservice.Service,
	riderCount, directieCount, participantsPer int,
	logger *slog.Logger,
) error {
	entries := make([]raceservice.StartlistEntry, 0, riderCount)
	teams := make([]string, 0, riderCount/8+1)
	for i := 0; i < riderCount/8+1; i++ {
		teams = append(teams, fmt.Sprintf("Team %s", faker.Company()))
	}
	seen := map[string]bool{}
	for i := 0; i < riderCount; i++ {
		name := faker.Name()
		for seen[name] {
			name = faker.Name()
		}
		seen[name] = true
		entries = append(entries, raceservice.StartlistEntry{
			RiderName: name,
			Number:    i + 1,
			TeamName:  teams[i%len(teams)],
			Country:   faker.CountryAbr(),
		})
	}
	imported, err := raceSvc.ImportStartlist(ctx, entries)
	if err != nil {
		return fmt.Errorf("import startlist: %w", err)
	}
	logger.Info("Startlist imported", slog.Int("riders", imported))

	riders, err := raceSvc.ListActiveRiders(ctx)
	if err != nil {
		return fmt.Errorf("list riders: %w", err)
	}
	if len(riders) < scoringdomain.TeamSizeMain+scoringdomain.TeamSizeBackup {
		return fmt.Errorf("not enough riders to draft rosters: %d", len(riders))
	}

	riderIdx := 0
	for d := 0; d < directieCount; d++ {
		directie, err := poolSvc.CreateDirectie(ctx, fmt.Sprintf("Directie %s", faker.City()))
		if err != nil {
			return fmt.Errorf("create directie: %w", err)
		}
		for p := 0; p < participantsPer; p++ {
			participant, err := poolSvc.CreateParticipant(ctx, faker.Name(), directie.ID)
			if err != nil {
				return fmt.Errorf("create participant: %w", err)
			}

			mains := make([]int64, 0, scoringdomain.TeamSizeMain)
			for len(mains) < scoringdomain.TeamSizeMain {
				mains = append(mains, riders[riderIdx%len(riders)].ID)
				riderIdx++
			}
			backup := riders[riderIdx%len(riders)].ID
			riderIdx++

			if err := poolSvc.SubmitRoster(ctx, participant.ID, mains, &backup); err != nil {
				return fmt.Errorf("submit roster for participant %d: %w", participant.ID, err)
			}
		}
	}

	logger.Info("Pool seeded",
		slog.Int("directies", directieCount),
		slog.Int("participants", directieCount*participantsPer),
	)
	return nil
}
