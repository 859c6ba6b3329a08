package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dropforge/pkg/requestcontext"
)

// Publisher appends structured activity events. Financial operations use
// Emit (fail-closed: if the event cannot be recorded the operation must
// fail); queries and secondary notifications use EmitBestEffort.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, logger: logger}
}

// Emit records an event synchronously. The caller must fail its operation if
// an error is returned.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	p.decorate(ctx, &event)
	return p.store.Append(ctx, event)
}

// EmitBestEffort records an event, logging instead of failing the caller.
func (p *Publisher) EmitBestEffort(ctx context.Context, event Event) {
	if err := p.Emit(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "activity event dropped",
			"action", event.Action,
			"error", err,
		)
	}
}

func (p *Publisher) decorate(ctx context.Context, event *Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now()
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
}
