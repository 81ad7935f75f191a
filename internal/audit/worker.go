package audit

import (
	"context"
	"log/slog"
)

// Sink delivers events to an external subscriber channel (Kafka in
// production, fakes in tests).
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains the publisher inbox into a sink. Delivery failures are logged
// and skipped; the store already holds the authoritative log.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil && w.logger != nil {
				w.logger.WarnContext(ctx, "audit sink delivery failed",
					"event_type", event.Type,
					"event_id", event.ID,
					"error", err,
				)
			}
		}
	}
}
