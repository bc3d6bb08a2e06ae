package snapshotservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/xuri/excelize/v2"

	poolservice "github.com/wielervrienden/tourpoule-bot/app/modules/pool/application"
	raceservice "github.com/wielervrienden/tourpoule-bot/app/modules/race/application"
	scoringservice "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/application"
	scoringdb "github.com/wielervrienden/tourpoule-bot/app/modules/scoring/infrastructure/repositories"
)

// Exporter writes denormalized per-stage snapshot documents from the settled
// scoring tables. It only reads derived state, so an export can be repeated
// at any time after settlement and produces the same documents.
type Exporter struct {
	race    raceservice.Service
	pool    poolservice.Service
	scoring scoringservice.Service

	dir         string
	chartTopN   int
	writeCharts bool
	logger      *slog.Logger
}

// NewExporter creates a new Exporter rooted at dir.
func NewExporter(
	race raceservice.Service,
	pool poolservice.Service,
	scoring scoringservice.Service,
	dir string,
	chartTopN int,
	writeCharts bool,
	logger *slog.Logger,
) *Exporter {
	if chartTopN <= 0 {
		chartTopN = 10
	}
	return &Exporter{
		race:        race,
		pool:        pool,
		scoring:     scoring,
		dir:         dir,
		chartTopN:   chartTopN,
		writeCharts: writeCharts,
		logger:      logger,
	}
}

// ExportStage builds the snapshot documents for a settled stage and writes
// them into the snapshot directory. The per-stage JSON documents are keyed
// by stage number; the workbook and the progression chart always reflect
// the most recently exported stage.
func (e *Exporter) ExportStage(ctx context.Context, stageNumber int) error {
	snapshot, err := e.BuildStageSnapshot(ctx, stageNumber)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	docs := map[string]any{
		fmt.Sprintf("leaderboard-stage-%d.json", stageNumber): snapshot.Leaderboard,
		fmt.Sprintf("riders-stage-%d.json", stageNumber):      snapshot.Riders,
		fmt.Sprintf("directies-stage-%d.json", stageNumber):   snapshot.Directies,
	}
	for name, doc := range docs {
		if err := e.writeJSON(filepath.Join(e.dir, name), doc); err != nil {
			return err
		}
	}

	if err := e.writeWorkbook(filepath.Join(e.dir, "standings.xlsx"), snapshot); err != nil {
		return err
	}
	if e.writeCharts {
		if err := e.writeProgressionChart(ctx, filepath.Join(e.dir, "progression.png"), stageNumber); err != nil {
			return err
		}
	}

	e.logger.InfoContext(ctx, "Stage snapshot exported",
		slog.Int("stage_number", stageNumber),
		slog.String("dir", e.dir),
	)
	return nil
}

// BuildStageSnapshot assembles the denormalized documents for one settled
// stage without writing anything.
func (e *Exporter) BuildStageSnapshot(ctx context.Context, stageNumber int) (*StageSnapshot, error) {
	participantRows, err := e.scoring.ParticipantStandings(ctx, stageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load participant standings: %w", err)
	}
	riderRows, err := e.scoring.RiderPoints(ctx, stageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load rider points: %w", err)
	}
	directieRows, err := e.scoring.DirectieStandings(ctx, stageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load directie standings: %w", err)
	}

	participants, err := e.pool.ListParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	directies, err := e.pool.ListDirecties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list directies: %w", err)
	}
	participantNames := make(map[int64]string, len(participants))
	participantDirectie := make(map[int64]int64, len(participants))
	for _, p := range participants {
		participantNames[p.ID] = p.Name
		participantDirectie[p.ID] = p.DirectieID
	}
	directieNames := make(map[int64]string, len(directies))
	for _, d := range directies {
		directieNames[d.ID] = d.Name
	}

	riderIDs := make([]int64, 0, len(riderRows))
	for _, r := range riderRows {
		riderIDs = append(riderIDs, r.RiderID)
	}
	riderNames, err := e.race.RiderNames(ctx, riderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rider names: %w", err)
	}

	snapshot := &StageSnapshot{StageNumber: stageNumber}

	for _, row := range participantRows {
		snapshot.Leaderboard = append(snapshot.Leaderboard, LeaderboardRow{
			ParticipantID:    row.ParticipantID,
			ParticipantName:  participantNames[row.ParticipantID],
			DirectieName:     directieNames[participantDirectie[row.ParticipantID]],
			StagePoints:      row.StagePoints,
			StageRank:        row.StageRank,
			CumulativePoints: row.CumulativePoints,
			OverallRank:      row.OverallRank,
			RankDelta:        row.RankDelta,
		})
	}
	slices.SortFunc(snapshot.Leaderboard, func(a, b LeaderboardRow) int {
		if a.OverallRank != b.OverallRank {
			return a.OverallRank - b.OverallRank
		}
		return int(a.ParticipantID - b.ParticipantID)
	})

	for _, row := range riderRows {
		snapshot.Riders = append(snapshot.Riders, RiderPointsRow{
			RiderID:           row.RiderID,
			RiderName:         riderNames[row.RiderID],
			FinishPoints:      row.FinishPoints,
			YellowPoints:      row.YellowPoints,
			GreenPoints:       row.GreenPoints,
			PolkaDotPoints:    row.PolkaDotPoints,
			WhitePoints:       row.WhitePoints,
			CombativityPoints: row.CombativityPoints,
			TotalPoints:       row.TotalPoints,
			StageRank:         row.StageRank,
		})
	}
	slices.SortFunc(snapshot.Riders, func(a, b RiderPointsRow) int {
		if a.StageRank != b.StageRank {
			return a.StageRank - b.StageRank
		}
		return int(a.RiderID - b.RiderID)
	})

	for _, row := range directieRows {
		snapshot.Directies = append(snapshot.Directies, DirectieRow{
			DirectieID:             row.DirectieID,
			DirectieName:           directieNames[row.DirectieID],
			StagePoints:            row.StagePoints,
			StageRank:              row.StageRank,
			CumulativePoints:       row.CumulativePoints,
			OverallRank:            row.OverallRank,
			RankDelta:              row.RankDelta,
			StageContributors:      row.StageContributors,
			CumulativeContributors: row.CumulativeContributors,
		})
	}
	slices.SortFunc(snapshot.Directies, func(a, b DirectieRow) int {
		if a.OverallRank != b.OverallRank {
			return a.OverallRank - b.OverallRank
		}
		return int(a.DirectieID - b.DirectieID)
	})

	return snapshot, nil
}

func (e *Exporter) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (e *Exporter) writeWorkbook(path string, snapshot *StageSnapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	const leaderboardSheet = "Leaderboard"
	if err := f.SetSheetName("Sheet1", leaderboardSheet); err != nil {
		return fmt.Errorf("failed to rename workbook sheet: %w", err)
	}
	if err := f.SetSheetRow(leaderboardSheet, "A1", &[]any{
		"Rank", "Participant", "Directie", "Stage points", "Stage rank", "Total points", "Delta",
	}); err != nil {
		return fmt.Errorf("failed to write workbook header: %w", err)
	}
	for i, row := range snapshot.Leaderboard {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(leaderboardSheet, cell, &[]any{
			row.OverallRank, row.ParticipantName, row.DirectieName,
			int64(row.StagePoints), row.StageRank, int64(row.CumulativePoints), row.RankDelta,
		}); err != nil {
			return fmt.Errorf("failed to write leaderboard row: %w", err)
		}
	}

	const riderSheet = "Riders"
	if _, err := f.NewSheet(riderSheet); err != nil {
		return fmt.Errorf("failed to add rider sheet: %w", err)
	}
	if err := f.SetSheetRow(riderSheet, "A1", &[]any{
		"Rank", "Rider", "Finish", "Yellow", "Green", "Polka dot", "White", "Combativity", "Total",
	}); err != nil {
		return fmt.Errorf("failed to write rider header: %w", err)
	}
	for i, row := range snapshot.Riders {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(riderSheet, cell, &[]any{
			row.StageRank, row.RiderName, int64(row.FinishPoints), int64(row.YellowPoints),
			int64(row.GreenPoints), int64(row.PolkaDotPoints), int64(row.WhitePoints),
			int64(row.CombativityPoints), int64(row.TotalPoints),
		}); err != nil {
			return fmt.Errorf("failed to write rider row: %w", err)
		}
	}

	const directieSheet = "Directies"
	if _, err := f.NewSheet(directieSheet); err != nil {
		return fmt.Errorf("failed to add directie sheet: %w", err)
	}
	if err := f.SetSheetRow(directieSheet, "A1", &[]any{
		"Rank", "Directie", "Stage points", "Stage rank", "Total points", "Delta",
	}); err != nil {
		return fmt.Errorf("failed to write directie header: %w", err)
	}
	for i, row := range snapshot.Directies {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(directieSheet, cell, &[]any{
			row.OverallRank, row.DirectieName, int64(row.StagePoints),
			row.StageRank, int64(row.CumulativePoints), row.RankDelta,
		}); err != nil {
			return fmt.Errorf("failed to write directie row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeProgressionChart plots the cumulative points of the current top
// participants across all settled stages up to and including stageNumber.
// The full history comes from one query; go-chart needs at least two
// x-values per series, so nothing is plotted before stage 2.
func (e *Exporter) writeProgressionChart(ctx context.Context, path string, stageNumber int) error {
	if stageNumber < 2 {
		return nil
	}

	history, err := e.scoring.ParticipantStandingsUpTo(ctx, stageNumber)
	if err != nil {
		return fmt.Errorf("failed to load standings history for chart: %w", err)
	}
	current := make([]*scoringdb.ParticipantStagePoints, 0, len(history))
	for _, row := range history {
		if row.StageNumber == stageNumber {
			current = append(current, row)
		}
	}
	if len(current) == 0 {
		return nil
	}
	slices.SortFunc(current, func(a, b *scoringdb.ParticipantStagePoints) int {
		return a.OverallRank - b.OverallRank
	})
	topN := e.chartTopN
	if topN > len(current) {
		topN = len(current)
	}

	participants, err := e.pool.ListParticipants(ctx)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	names := make(map[int64]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}

	// cumulative[participantID][stage-1] holds the running total.
	cumulative := make(map[int64][]float64, topN)
	for _, row := range current[:topN] {
		cumulative[row.ParticipantID] = make([]float64, stageNumber)
	}
	for _, row := range history {
		if series, ok := cumulative[row.ParticipantID]; ok {
			series[row.StageNumber-1] = float64(row.CumulativePoints)
		}
	}

	xs := make([]float64, stageNumber)
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	series := make([]chart.Series, 0, topN)
	for _, row := range current[:topN] {
		series = append(series, chart.ContinuousSeries{
			Name:    names[row.ParticipantID],
			XValues: xs,
			YValues: cumulative[row.ParticipantID],
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Tourpoule standings through stage %d", stageNumber),
		XAxis:  chart.XAxis{Name: "Stage"},
		YAxis:  chart.YAxis{Name: "Points"},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer out.Close()
	if err := graph.Render(chart.PNG, out); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
