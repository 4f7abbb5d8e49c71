// Package kafka streams audit events to a Kafka topic.
//
// Records are keyed by document ID so every event for a document lands on the
// same partition in order. When the broker keeps failing, the circuit opens
// and events are written to the fallback sink until the broker recovers.
package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	dErrors "i9score/pkg/domain-errors"
	audit "i9score/pkg/platform/audit"
	"i9score/pkg/platform/circuit"
)

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

type Sink struct {
	producer Producer
	topic    string
	fallback audit.Sink
	breaker  *circuit.Breaker
	timeout  time.Duration
	logger   *slog.Logger
}

type Option func(*Sink)

// WithFallback receives events while the circuit is open.
func WithFallback(fallback audit.Sink) Option {
	return func(s *Sink) {
		s.fallback = fallback
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Sink) {
		s.breaker = b
	}
}

func WithProduceTimeout(d time.Duration) Option {
	return func(s *Sink) {
		s.timeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

func New(producer Producer, topic string, opts ...Option) (*Sink, error) {
	if producer == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "kafka producer is required")
	}
	if topic == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "kafka topic is required")
	}
	s := &Sink{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("audit-kafka"),
		timeout:  5 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewClient dials the brokers.
func NewClient(brokers []string, clientID string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "create kafka client")
	}
	return client, nil
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode audit event")
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.DocumentID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}

	produceCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	produceErr := s.producer.ProduceSync(produceCtx, record).FirstErr()

	if produceErr == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "audit kafka circuit closed", "circuit", s.breaker.Name(), "topic", s.topic)
		}
		return nil
	}

	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "audit kafka circuit opened", "circuit", s.breaker.Name(), "topic", s.topic, "error", produceErr)
	}
	if useFallback && s.fallback != nil {
		return s.fallback.Append(ctx, event)
	}
	return dErrors.Wrap(produceErr, dErrors.CodeUnavailable, "produce audit event")
}

// Health fails while the circuit is open and events are going to the fallback.
func (s *Sink) Health(_ context.Context) error {
	if s.breaker.IsOpen() {
		return dErrors.New(dErrors.CodeUnavailable, "audit circuit "+s.breaker.Name()+" is open")
	}
	return nil
}
