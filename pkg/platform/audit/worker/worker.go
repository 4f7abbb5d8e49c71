package worker

import (
	"context"
	"log/slog"

	audit "i9score/pkg/platform/audit"
)

// Worker consumes audit events from a channel and hands them to a sink.
// A failing append is logged and does not stop the worker.
type Worker struct {
	sink   audit.Sink
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(sink audit.Sink, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run returns when the inbox is closed and drained, or when ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit append failed",
					"action", event.Action,
					"document_id", event.DocumentID,
					"error", err,
				)
			}
		}
	}
}
