package scoringservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wielervrienden/tourpoule-bot/eventbus"
)

// SettleStage recomputes all derived scoring state for one stage:
// active rosters, rider points, participant points and directie points,
// then marks the stage complete.
//
// The call is idempotent: a stage that already settled returns its prior
// no-op summary unless force is set. The whole pipeline runs inside one
// transaction, so a failed step leaves earlier persisted state untouched.
func (s *SettlementService) SettleStage(ctx context.Context, stageNumber int, force bool) (*SettlementSummary, error) {
	unlock := s.lockStage(stageNumber)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "SettleStage", trace.WithAttributes(
		attribute.Int("stage_number", stageNumber),
		attribute.Bool("force", force),
	))
	defer span.End()

	start := time.Now()
	summary, err := s.settle(ctx, stageNumber, force)
	s.metrics.SettlementDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		s.metrics.SettlementAttempts.WithLabelValues("failure").Inc()
		s.logger.Error("Stage settlement failed",
			slog.Int("stage", stageNumber),
			slog.Bool("force", force),
			slog.Any("error", err),
		)
		return nil, err
	case summary.AlreadySettled:
		s.metrics.SettlementAttempts.WithLabelValues("noop").Inc()
		s.logger.Info("Stage already settled", slog.Int("stage", stageNumber))
	default:
		s.metrics.SettlementAttempts.WithLabelValues("success").Inc()
		s.metrics.PointsAwarded.Add(float64(summary.TotalPointsAwarded))
		s.metrics.SubstitutionsMade.Add(float64(len(summary.Substitutions)))
		s.logger.Info("Stage settled",
			slog.Int("stage", stageNumber),
			slog.Int("participants", summary.ParticipantsProcessed),
			slog.Int("riders_scored", summary.RidersScored),
			slog.Int("substitutions", len(summary.Substitutions)),
			slog.Int("points_awarded", int(summary.TotalPointsAwarded)),
		)
		s.publishStageSettled(ctx, stageNumber)
	}

	return summary, nil
}

func (s *SettlementService) settle(ctx context.Context, stageNumber int, force bool) (*SettlementSummary, error) {
	stage, err := s.stages.GetStage(ctx, s.db, stageNumber)
	if err != nil {
		return nil, err
	}

	// Idempotency gate: repeated invocations are safe no-ops.
	if stage.IsComplete && !force {
		return &SettlementSummary{StageNumber: stageNumber, AlreadySettled: true}, nil
	}

	// Cumulative totals are a fold over prior stages; settling out of
	// order would make them undefined.
	incomplete, err := s.stages.CountIncompleteBefore(ctx, s.db, stageNumber)
	if err != nil {
		return nil, err
	}
	if incomplete > 0 {
		return nil, fmt.Errorf("%w: %d earlier stage(s) not settled", ErrOutOfOrderSettlement, incomplete)
	}

	summary := &SettlementSummary{StageNumber: stageNumber, Forced: force && stage.IsComplete}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		factsRow, err := s.stages.GetStageFacts(ctx, tx, stageNumber)
		if err != nil {
			s.metrics.SettlementFailures.WithLabelValues("facts").Inc()
			return err
		}
		facts := factsRow.Facts()

		activeRoster, substitutions, err := s.resolveActiveRosters(ctx, tx, stageNumber, facts.DNSSet())
		if err != nil {
			s.metrics.SettlementFailures.WithLabelValues("rosters").Inc()
			return fmt.Errorf("roster resolution failed: %w", err)
		}

		riderTotals, err := s.scoreRiders(ctx, tx, facts)
		if err != nil {
			s.metrics.SettlementFailures.WithLabelValues("riders").Inc()
			return fmt.Errorf("rider scoring failed: %w", err)
		}

		participantRows, err := s.aggregateParticipants(ctx, tx, stageNumber, activeRoster, riderTotals)
		if err != nil {
			s.metrics.SettlementFailures.WithLabelValues("participants").Inc()
			return fmt.Errorf("participant aggregation failed: %w", err)
		}

		if _, err := s.aggregateDirecties(ctx, tx, stageNumber, participantRows); err != nil {
			s.metrics.SettlementFailures.WithLabelValues("directies").Inc()
			return fmt.Errorf("directie aggregation failed: %w", err)
		}

		if err := s.stages.MarkComplete(ctx, tx, stageNumber); err != nil {
			s.metrics.SettlementFailures.WithLabelValues("complete").Inc()
			return err
		}

		for _, event := range substitutions {
			summary.Substitutions = append(summary.Substitutions, SubstitutionInfo{
				ParticipantID: event.ParticipantID,
				RiderOutID:    event.RiderOutID,
				RiderInID:     event.RiderInID,
			})
		}
		summary.ParticipantsProcessed = len(participantRows)
		summary.RidersScored = len(riderTotals)
		for _, row := range participantRows {
			summary.TotalPointsAwarded += row.StagePoints
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// publishStageSettled notifies subscribers (the snapshot exporter) that
// fresh derived state is available. Publish failures are logged only; the
// settlement itself already committed.
func (s *SettlementService) publishStageSettled(ctx context.Context, stageNumber int) {
	if s.eventBus == nil {
		return
	}

	payload, err := json.Marshal(eventbus.StageSettledPayload{StageNumber: stageNumber})
	if err != nil {
		s.logger.Error("Failed to marshal stage settled payload", slog.Any("error", err))
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := s.eventBus.Publish(ctx, eventbus.TopicStageSettled, msg); err != nil {
		s.logger.Error("Failed to publish stage settled event",
			slog.Int("stage", stageNumber),
			slog.Any("error", err),
		)
	}
}
