package audit

import (
	"context"
	"log/slog"
)

// Worker drains events from a buffered channel into a Store so request paths
// do not wait on audit persistence.
type Worker struct {
	store  Store
	inbox  chan Event
	logger *slog.Logger
}

func NewWorker(store Store, buffer int, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: make(chan Event, buffer), logger: logger}
}

// Emit enqueues event. When the buffer is full the event is dropped and logged.
func (w *Worker) Emit(ctx context.Context, event Event) error {
	select {
	case w.inbox <- event:
	default:
		w.logger.WarnContext(ctx, "audit buffer full, dropping event", "action", event.Action)
	}
	return nil
}

// Run persists queued events until ctx is done, then flushes what is buffered.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.inbox:
			w.persist(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.persist(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) persist(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event", "error", err, "action", event.Action)
	}
}
