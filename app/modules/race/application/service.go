package raceservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uptrace/bun"

	racedomain "github.com/wielervrienden/tourpoule-bot/app/modules/race/domain"
	racedb "github.com/wielervrienden/tourpoule-bot/app/modules/race/infrastructure/repositories"
)

// RaceService handles startlist and stage-fact ingestion.
type RaceService struct {
	db     *bun.DB
	riders racedb.RiderRepository
	stages racedb.StageRepository
	logger *slog.Logger
}

// NewRaceService creates a new RaceService.
func NewRaceService(db *bun.DB, riders racedb.RiderRepository, stages racedb.StageRepository, logger *slog.Logger) *RaceService {
	return &RaceService{
		db:     db,
		riders: riders,
		stages: stages,
		logger: logger,
	}
}

// ImportStartlist replaces/refreshes the rider table from a startlist dump.
func (s *RaceService) ImportStartlist(ctx context.Context, entries []StartlistEntry) (int, error) {
	riders := make([]*racedb.Rider, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.RiderName)
		if name == "" {
			continue
		}
		riders = append(riders, &racedb.Rider{
			Name:     name,
			Team:     entry.TeamName,
			Number:   entry.Number,
			Country:  entry.Country,
			IsActive: true,
		})
	}

	count, err := s.riders.UpsertStartlist(ctx, s.db, riders)
	if err != nil {
		s.logger.Error("Failed to import startlist", slog.Any("error", err))
		return 0, fmt.Errorf("failed to import startlist: %w", err)
	}

	s.logger.Info("Startlist imported", slog.Int("riders", count))
	return count, nil
}

// SubmitStageResults resolves, validates and stores the facts of a stage.
// Rider names are matched exactly (case-insensitive); unknown names reject
// the whole submission. Missing jerseys or a short finisher list are
// accepted and reported back as warnings.
func (s *RaceService) SubmitStageResults(ctx context.Context, req SubmitStageResultsRequest) (*IngestResult, error) {
	if req.StageNumber < 1 {
		return nil, fmt.Errorf("%w: stage number %d", racedomain.ErrInvalidFacts, req.StageNumber)
	}

	facts, err := s.resolveFacts(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := facts.Validate(); err != nil {
		return nil, err
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		stage := &racedb.Stage{
			StageNumber:   req.StageNumber,
			Date:          req.Date,
			DistanceKM:    req.DistanceKM,
			DepartureCity: req.DepartureCity,
			ArrivalCity:   req.ArrivalCity,
			StageType:     req.StageType,
			WonHow:        req.WonHow,
			WinningTeam:   req.WinningTeam,
		}
		if err := s.stages.UpsertStage(ctx, tx, stage); err != nil {
			return err
		}

		row := &racedb.StageFact{
			StageNumber:        facts.StageNumber,
			Finishers:          facts.Finishers,
			Jerseys:            facts.Jerseys,
			CombativityRiderID: facts.CombativityRiderID,
			DNFRiderIDs:        facts.DNFRiderIDs,
			DNSRiderIDs:        facts.DNSRiderIDs,
		}
		return s.stages.UpsertStageFacts(ctx, tx, row)
	})
	if err != nil {
		s.logger.Error("Failed to store stage facts",
			slog.Int("stage", req.StageNumber),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to store stage facts: %w", err)
	}

	warnings := facts.Warnings()
	s.logger.Info("Stage facts stored",
		slog.Int("stage", req.StageNumber),
		slog.Int("finishers", len(facts.Finishers)),
		slog.Int("warnings", len(warnings)),
	)

	return &IngestResult{
		StageNumber: req.StageNumber,
		Finishers:   len(facts.Finishers),
		DNFCount:    len(facts.DNFRiderIDs),
		DNSCount:    len(facts.DNSRiderIDs),
		Warnings:    warnings,
	}, nil
}

// resolveFacts maps every submitted rider name to a rider ID.
func (s *RaceService) resolveFacts(ctx context.Context, req SubmitStageResultsRequest) (*racedomain.StageFacts, error) {
	var names []string
	for _, fin := range req.Finishers {
		names = append(names, fin.RiderName)
	}
	for _, name := range req.Jerseys {
		if name != "" {
			names = append(names, name)
		}
	}
	if req.Combativity != "" {
		names = append(names, req.Combativity)
	}
	names = append(names, req.DNFRiders...)
	names = append(names, req.DNSRiders...)

	resolved, missing, err := s.riders.ResolveNames(ctx, s.db, names)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rider names: %w", err)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: unknown riders: %s", racedomain.ErrInvalidFacts, strings.Join(missing, ", "))
	}

	facts := &racedomain.StageFacts{
		StageNumber: req.StageNumber,
		Jerseys:     make(map[racedomain.JerseyType]int64),
	}

	for _, fin := range req.Finishers {
		facts.Finishers = append(facts.Finishers, racedomain.Finisher{
			RiderID:  resolved[fin.RiderName],
			Position: fin.Position,
			Gap:      fin.Gap,
		})
	}
	for jersey, name := range req.Jerseys {
		if name == "" {
			continue
		}
		jt := racedomain.JerseyType(jersey)
		valid := false
		for _, known := range racedomain.AllJerseyTypes {
			if jt == known {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("%w: unknown jersey type %q", racedomain.ErrInvalidFacts, jersey)
		}
		facts.Jerseys[jt] = resolved[name]
	}
	if req.Combativity != "" {
		id := resolved[req.Combativity]
		facts.CombativityRiderID = &id
	}
	for _, name := range req.DNFRiders {
		facts.DNFRiderIDs = append(facts.DNFRiderIDs, resolved[name])
	}
	for _, name := range req.DNSRiders {
		facts.DNSRiderIDs = append(facts.DNSRiderIDs, resolved[name])
	}

	return facts, nil
}

// CurrentStage returns the highest stage number that has settled.
func (s *RaceService) CurrentStage(ctx context.Context) (int, error) {
	return s.stages.HighestCompleteStage(ctx, s.db)
}

func (s *RaceService) GetStage(ctx context.Context, stageNumber int) (*racedb.Stage, error) {
	return s.stages.GetStage(ctx, s.db, stageNumber)
}

func (s *RaceService) ListStages(ctx context.Context) ([]*racedb.Stage, error) {
	return s.stages.ListStages(ctx, s.db)
}

func (s *RaceService) GetStageFacts(ctx context.Context, stageNumber int) (*racedomain.StageFacts, error) {
	row, err := s.stages.GetStageFacts(ctx, s.db, stageNumber)
	if err != nil {
		return nil, err
	}
	return row.Facts(), nil
}

func (s *RaceService) ListActiveRiders(ctx context.Context) ([]*racedb.Rider, error) {
	return s.riders.ListActive(ctx, s.db)
}

// RiderNames resolves rider IDs to display names for export documents.
func (s *RaceService) RiderNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	riders, err := s.riders.GetByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(riders))
	for id, rider := range riders {
		names[id] = rider.Name
	}
	return names, nil
}
