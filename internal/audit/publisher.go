package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"landledger/pkg/domain"
)

// Store persists the append-only event log.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByProperty(ctx context.Context, id domain.PropertyID) ([]Event, error)
	List(ctx context.Context) ([]Event, error)
}

// Publisher captures structured registry events. Store writes are synchronous
// because the log is part of the observable contract; sink delivery is
// fire-and-forget through the worker inbox.
type Publisher struct {
	store  Store
	inbox  chan Event
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for drop warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithInboxSize overrides the buffered channel size feeding the worker.
func WithInboxSize(n int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, n)
	}
}

// NewPublisher creates a publisher backed by the given store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		inbox: make(chan Event, 256),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit appends the event to the store and offers it to the sink worker.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}

	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit inbox full, dropping sink delivery",
				"event_type", event.Type,
				"event_id", event.ID,
			)
		}
	}
	return nil
}

// Inbox exposes the sink feed for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// ListByProperty returns the event trail for one property.
func (p *Publisher) ListByProperty(ctx context.Context, id domain.PropertyID) ([]Event, error) {
	return p.store.ListByProperty(ctx, id)
}
