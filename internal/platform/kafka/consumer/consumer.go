// Package consumer runs the poll/handle/commit loop for the event log worker.
// Offsets are committed only after the handler reports a durable write, so
// delivery is at-least-once: a crash between write and commit produces a
// duplicate row, never a lost one. A record whose handling fails is retried
// in place after the pause; the loop never advances past an uncommitted
// record, because polling again would move the client's position beyond it.
package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"clinrec/internal/platform/kafka"
	"clinrec/pkg/platform/retry"
)

// errorPause is how long the loop sleeps after a failed poll, handle, or
// commit before retrying.
const errorPause = 5 * time.Second

// Message is one delivered event.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// Handler processes one message. Returning an error keeps the offset
// uncommitted; the same message is retried after the pause.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// client is the slice of kgo.Client the loop uses. Narrowed to an interface
// so tests can script fetches and commit failures.
type client interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	Close()
}

// Consumer owns the worker's queue connection.
type Consumer struct {
	client  client
	topic   string
	handler Handler
	logger  *slog.Logger
	pause   time.Duration
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithPause overrides the error pause. Tests shorten it.
func WithPause(d time.Duration) Option {
	return func(c *Consumer) {
		if d >= 0 {
			c.pause = d
		}
	}
}

// withClient injects a pre-dialed client and skips the broker dial. Tests
// inject fakes here.
func withClient(cl client) Option {
	return func(c *Consumer) {
		if cl != nil {
			c.client = cl
		}
	}
}

// Connect dials the brokers and declares the topic, retrying with the default
// bounded policy. Exhausting retries is fatal to the worker.
func Connect(ctx context.Context, brokers []string, topic, group string, handler Handler, logger *slog.Logger, opts ...Option) (*Consumer, error) {
	c := &Consumer{
		topic:   topic,
		handler: handler,
		logger:  logger,
		pause:   errorPause,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.client != nil {
		return c, nil
	}

	attempt := 0
	policy := retry.New()
	err := policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		kc, dialErr := kgo.NewClient(
			kgo.SeedBrokers(brokers...),
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.DisableAutoCommit(),
		)
		if dialErr == nil {
			dialErr = kafka.EnsureTopic(ctx, kc, topic)
			if dialErr != nil {
				kc.Close()
			}
		}
		if dialErr != nil {
			logger.Warn("queue connection failed",
				"attempt", attempt,
				"topic", topic,
				"error", dialErr,
			)
			return dialErr
		}
		c.client = kc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("queue connection established", "topic", topic, "group", group)
	return c, nil
}

// Run consumes until ctx is cancelled. Transient errors pause the loop and
// consumption resumes; only cancellation ends it.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}

		degraded := false
		for _, fetchErr := range fetches.Errors() {
			c.logger.Error("queue fetch failed",
				"topic", fetchErr.Topic,
				"error", fetchErr.Err,
			)
			degraded = true
		}

		var records []*kgo.Record
		fetches.EachRecord(func(record *kgo.Record) {
			records = append(records, record)
		})
		for _, record := range records {
			if err := c.process(ctx, record); err != nil {
				return err
			}
		}

		if degraded {
			c.sleep(ctx)
		}
	}
}

// process handles one record until its offset is durably committed. Handle
// and commit failures both pause and retry from the top, so a commit failure
// can hand the same message to the handler twice.
func (c *Consumer) process(ctx context.Context, record *kgo.Record) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := &Message{Topic: record.Topic, Key: record.Key, Value: record.Value}
		if err := c.handler.Handle(ctx, msg); err != nil {
			c.logger.Error("message handling failed, retrying in place",
				"topic", record.Topic,
				"offset", record.Offset,
				"error", err,
			)
			c.sleep(ctx)
			continue
		}
		if err := c.client.CommitRecords(ctx, record); err != nil {
			c.logger.Error("offset commit failed, retrying",
				"topic", record.Topic,
				"offset", record.Offset,
				"error", err,
			)
			c.sleep(ctx)
			continue
		}
		return nil
	}
}

func (c *Consumer) sleep(ctx context.Context) {
	timer := time.NewTimer(c.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Close tears down the connection.
func (c *Consumer) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
