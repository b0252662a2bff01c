package producer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	dErrors "clinrec/pkg/domain-errors"
	"clinrec/pkg/platform/retry"
)

// fakeClient scripts ProduceSync outcomes: one error per attempt, then
// success once the script runs out.
type fakeClient struct {
	mu      sync.Mutex
	errs    []error
	records []*kgo.Record
	closed  bool
}

func (c *fakeClient) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return kgo.ProduceResults{{Err: err}}
		}
	}
	c.records = append(c.records, rs...)
	return kgo.ProduceResults{{Record: rs[0]}}
}

func (c *fakeClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fastPolicy() Option {
	return WithPolicy(retry.New(retry.WithDelay(0)))
}

func newTestProducer(t *testing.T, dial func(ctx context.Context) (client, error)) *Producer {
	t.Helper()
	p := New(nil, "recommendations_queue", discardLogger(), fastPolicy(), withDial(dial))
	require.NoError(t, p.Connect(context.Background()))
	return p
}

func TestPublish_DeliversRecord(t *testing.T) {
	fake := &fakeClient{}
	p := newTestProducer(t, func(context.Context) (client, error) { return fake, nil })

	err := p.Publish(context.Background(), []byte("key-1"), []byte(`{"recommendation_id":"r1"}`))
	require.NoError(t, err)

	require.Len(t, fake.records, 1)
	assert.Equal(t, "recommendations_queue", fake.records[0].Topic)
	assert.Equal(t, []byte("key-1"), fake.records[0].Key)
	assert.Equal(t, []byte(`{"recommendation_id":"r1"}`), fake.records[0].Value)
}

func TestPublish_RetriesTransientErrors(t *testing.T) {
	fake := &fakeClient{errs: []error{
		errors.New("broker unavailable"),
		errors.New("broker unavailable"),
	}}
	p := newTestProducer(t, func(context.Context) (client, error) { return fake, nil })

	err := p.Publish(context.Background(), []byte("k"), []byte("v"))
	require.NoError(t, err)
	assert.Len(t, fake.records, 1)
}

func TestPublish_ExhaustsFiveAttempts(t *testing.T) {
	brokerDown := errors.New("broker unavailable")
	fake := &fakeClient{errs: []error{brokerDown, brokerDown, brokerDown, brokerDown, brokerDown}}
	p := newTestProducer(t, func(context.Context) (client, error) { return fake, nil })

	err := p.Publish(context.Background(), []byte("k"), []byte("v"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDependency))
	assert.ErrorIs(t, err, brokerDown)
	assert.Empty(t, fake.records) // all five attempts consumed an error
}

func TestPublish_RepeatedClosureExhaustsRetries(t *testing.T) {
	dials := 0
	p := newTestProducer(t, func(context.Context) (client, error) {
		dials++
		return &fakeClient{errs: []error{kgo.ErrClientClosed}}, nil
	})

	err := p.Publish(context.Background(), []byte("k"), []byte("v"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDependency))
	assert.ErrorIs(t, err, kgo.ErrClientClosed)
	// Initial connect plus a reconnect before each retry attempt.
	assert.Equal(t, 5, dials)
}

func TestPublish_ReconnectsWhenClientClosed(t *testing.T) {
	closed := &fakeClient{errs: []error{kgo.ErrClientClosed}}
	healthy := &fakeClient{}

	clients := []client{closed, healthy}
	dials := 0
	p := newTestProducer(t, func(context.Context) (client, error) {
		c := clients[dials]
		dials++
		return c, nil
	})

	err := p.Publish(context.Background(), []byte("k"), []byte("v"))
	require.NoError(t, err)
	assert.Equal(t, 2, dials)
	assert.Len(t, healthy.records, 1)
}

func TestConnect_RetriesDialFailures(t *testing.T) {
	dials := 0
	fake := &fakeClient{}
	p := New(nil, "recommendations_queue", discardLogger(), fastPolicy(), withDial(func(context.Context) (client, error) {
		dials++
		if dials < 3 {
			return nil, errors.New("connection refused")
		}
		return fake, nil
	}))

	require.NoError(t, p.Connect(context.Background()))
	assert.Equal(t, 3, dials)
}

func TestConnect_SurfacesDependencyFailureAfterExhaustion(t *testing.T) {
	p := New(nil, "recommendations_queue", discardLogger(), fastPolicy(), withDial(func(context.Context) (client, error) {
		return nil, errors.New("connection refused")
	}))

	err := p.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDependency))
}

func TestConnect_Idempotent(t *testing.T) {
	dials := 0
	fake := &fakeClient{}
	p := New(nil, "recommendations_queue", discardLogger(), fastPolicy(), withDial(func(context.Context) (client, error) {
		dials++
		return fake, nil
	}))

	require.NoError(t, p.Connect(context.Background()))
	require.NoError(t, p.Connect(context.Background()))
	assert.Equal(t, 1, dials)
}

func TestClose_ReleasesClient(t *testing.T) {
	fake := &fakeClient{}
	p := newTestProducer(t, func(context.Context) (client, error) { return fake, nil })

	p.Close()
	assert.True(t, fake.closed)
	p.Close() // second close is a no-op
}
