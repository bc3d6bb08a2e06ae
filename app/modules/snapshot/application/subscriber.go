package snapshotservice

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/wielervrienden/tourpoule-bot/eventbus"
)

// Subscriber listens for settled stages and exports their snapshots.
type Subscriber struct {
	bus      eventbus.EventBus
	exporter *Exporter
	logger   *slog.Logger
}

// NewSubscriber creates a new Subscriber.
func NewSubscriber(bus eventbus.EventBus, exporter *Exporter, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		bus:      bus,
		exporter: exporter,
		logger:   logger,
	}
}

// Run consumes settlement events until ctx is canceled. An export failure is
// logged and the message acked anyway; the snapshot can be regenerated from
// the settled tables at any time.
func (s *Subscriber) Run(ctx context.Context) error {
	messages, err := s.bus.Subscribe(ctx, eventbus.TopicStageSettled)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			var payload eventbus.StageSettledPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				s.logger.ErrorContext(ctx, "Failed to decode settlement event",
					slog.String("message_id", msg.UUID),
					slog.Any("error", err),
				)
				msg.Ack()
				continue
			}

			if err := s.exporter.ExportStage(ctx, payload.StageNumber); err != nil {
				s.logger.ErrorContext(ctx, "Failed to export stage snapshot",
					slog.Int("stage_number", payload.StageNumber),
					slog.Any("error", err),
				)
			}
			msg.Ack()
		}
	}
}
