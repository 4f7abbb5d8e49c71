package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	dErrors "i9score/pkg/domain-errors"
	audit "i9score/pkg/platform/audit"
	"i9score/pkg/platform/audit/worker"
)

// ErrBufferFull is returned by async Emit when the buffer has no room.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

// Publisher emits audit events to a sink, either synchronously or through a
// bounded buffer drained by a background worker.
type Publisher struct {
	sink   audit.Sink
	logger *slog.Logger
	now    func() time.Time

	bufferSize int
	inbox      chan audit.Event
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(sink audit.Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sink:   sink,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(sink, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit stamps and forwards an event. In async mode it never blocks: a full
// buffer drops the event and returns ErrBufferFull.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.sink.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"document_id", event.DocumentID,
		)
		return ErrBufferFull
	}
}

// List replays a document's events when the sink supports it.
func (p *Publisher) List(ctx context.Context, documentID string) ([]audit.Event, error) {
	store, ok := p.sink.(audit.Store)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnavailable, "audit sink does not support listing")
	}
	return store.ListByDocument(ctx, documentID)
}

// Close stops accepting events and waits for the buffer to drain.
func (p *Publisher) Close() error {
	if p.inbox == nil {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.done
	return nil
}
