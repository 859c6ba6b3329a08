package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dropforge/internal/platform/metrics"
)

// Sink is where the outbox drains to; in production a Kafka producer.
type Sink interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Worker drains unpublished outbox events into the sink. Events are marked
// published only after the sink accepts them, so delivery is at-least-once
// and consumers must tolerate duplicates.
type Worker struct {
	store    Store
	sink     Sink
	logger   *slog.Logger
	metrics  *metrics.Metrics
	interval time.Duration
	batch    int
}

func NewWorker(store Store, sink Sink, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		store:    store,
		sink:     sink,
		logger:   logger,
		metrics:  m,
		interval: time.Second,
		batch:    100,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				// Publish failures are retried on the next tick; the outbox
				// keeps the events.
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
				if w.metrics != nil {
					w.metrics.PublishFailures.Inc()
				}
			}
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) error {
	events, err := w.store.UnpublishedBatch(ctx, w.batch)
	if err != nil {
		return err
	}
	if w.metrics != nil {
		if pending, err := w.store.PendingCount(ctx); err == nil {
			w.metrics.OutboxDepth.Set(float64(pending))
		}
	}
	if len(events) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(events))
	var publishErr error
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			// A non-serializable event can never succeed; skip it but keep
			// the rest of the batch flowing.
			w.logger.ErrorContext(ctx, "unserializable activity event", "id", event.ID, "error", err)
			published = append(published, event.ID)
			continue
		}
		if err := w.sink.Publish(ctx, event.ID.String(), payload); err != nil {
			publishErr = err
			break
		}
		published = append(published, event.ID)
	}
	if len(published) > 0 {
		if err := w.store.MarkPublished(ctx, published); err != nil {
			return err
		}
	}
	return publishErr
}
