// Package producer owns the process-wide queue connection. The client is
// singly-owned: all publishes go through Producer, which serializes access and
// reconnects transparently when the connection has been torn down.
package producer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/twmb/franz-go/pkg/kgo"

	"clinrec/internal/platform/kafka"
	dErrors "clinrec/pkg/domain-errors"
	"clinrec/pkg/platform/retry"
)

var (
	publishRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinrec_queue_publish_retries_total",
		Help: "Number of retried queue publish attempts",
	})
	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinrec_queue_publish_failures_total",
		Help: "Number of publishes abandoned after retry exhaustion",
	})
)

// client is the slice of kgo.Client the producer uses. Narrowed to an
// interface so tests can simulate broker failures.
type client interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Producer publishes events to a single named topic over one long-lived
// connection. Publish is safe for concurrent use.
type Producer struct {
	topic  string
	logger *slog.Logger
	policy retry.Policy
	dial   func(ctx context.Context) (client, error)

	mu     sync.Mutex
	client client
}

// Option configures a Producer.
type Option func(*Producer)

// WithPolicy overrides the retry policy. Tests use a zero-delay policy.
func WithPolicy(policy retry.Policy) Option {
	return func(p *Producer) {
		p.policy = policy
	}
}

// withDial replaces the broker dialer. Tests inject fakes here.
func withDial(dial func(ctx context.Context) (client, error)) Option {
	return func(p *Producer) {
		if dial != nil {
			p.dial = dial
		}
	}
}

// New builds a producer for the given brokers and topic. No connection is
// made until Connect.
func New(brokers []string, topic string, logger *slog.Logger, opts ...Option) *Producer {
	p := &Producer{
		topic:  topic,
		logger: logger,
		policy: retry.New(),
	}
	p.dial = func(ctx context.Context) (client, error) {
		kc, err := kgo.NewClient(
			kgo.SeedBrokers(brokers...),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
		)
		if err != nil {
			return nil, err
		}
		if err := kafka.EnsureTopic(ctx, kc, topic); err != nil {
			kc.Close()
			return nil, err
		}
		return kc, nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Connect establishes the connection and declares the topic, retrying with
// the configured policy. Exhausting retries surfaces a dependency error.
func (p *Producer) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return nil
	}
	return p.reconnectLocked(ctx)
}

func (p *Producer) reconnectLocked(ctx context.Context) error {
	attempt := 0
	err := p.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		c, dialErr := p.dial(ctx)
		if dialErr != nil {
			p.logger.Warn("queue connection failed",
				"attempt", attempt,
				"topic", p.topic,
				"error", dialErr,
			)
			return dialErr
		}
		p.client = c
		return nil
	})
	if err != nil {
		return dErrors.Wrap(dErrors.CodeDependency, "could not connect to queue", err)
	}
	p.logger.Info("queue connection established", "topic", p.topic)
	return nil
}

// Publish sends one event to the topic. A successful return means the broker
// accepted the message; consumer processing is not implied. If the connection
// is observed closed the producer reconnects before retrying. Exhausting the
// retry budget surfaces a dependency error.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	attempt := 0
	err := p.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			publishRetries.Inc()
		}

		p.mu.Lock()
		if p.client == nil {
			if err := p.reconnectLocked(ctx); err != nil {
				p.mu.Unlock()
				return err
			}
		}
		c := p.client
		p.mu.Unlock()

		record := &kgo.Record{Topic: p.topic, Key: key, Value: value}
		if err := c.ProduceSync(ctx, record).FirstErr(); err != nil {
			p.logger.Warn("queue publish failed",
				"attempt", attempt,
				"topic", p.topic,
				"error", err,
			)
			if errors.Is(err, kgo.ErrClientClosed) {
				p.mu.Lock()
				if p.client == c {
					p.client = nil
				}
				p.mu.Unlock()
			}
			return err
		}
		return nil
	})
	if err != nil {
		publishFailures.Inc()
		return dErrors.Wrap(dErrors.CodeDependency, "could not publish to queue", err)
	}
	return nil
}

// Close tears down the connection.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}
