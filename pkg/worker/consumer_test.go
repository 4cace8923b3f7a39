package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aegis-triage/pkg/logger"
	"github.com/jwalitptl/aegis-triage/pkg/messaging"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
)

func startConsumer(t *testing.T, c *Consumer) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("consumer did not stop")
		}
	})
	return cancel
}

func TestConsumerDeliversAndRetries(t *testing.T) {
	broker := messaging.NewMemoryBroker()
	m := metrics.New("test", prometheus.NewRegistry())
	c := NewConsumer(broker, ConsumerConfig{RetryAttempts: 3, RetryDelay: time.Millisecond}, logger.Nop(), m)

	var calls atomic.Int32
	got := make(chan Envelope, 1)
	c.Handle(messaging.ChannelCaseCritical, func(ctx context.Context, channel string, env Envelope) error {
		if calls.Add(1) < 2 {
			return errors.New("smtp down")
		}
		select {
		case got <- env:
		default:
		}
		return nil
	})
	startConsumer(t, c)

	require.Eventually(t, func() bool {
		_ = broker.Publish(context.Background(), messaging.ChannelCaseCritical,
			messaging.Message{Type: "case.critical", Payload: map[string]string{"caseId": "c1"}})
		return len(got) > 0 || calls.Load() > 0
	}, time.Second, 10*time.Millisecond)

	select {
	case env := <-got:
		assert.Equal(t, "case.critical", env.Type)
		assert.JSONEq(t, `{"caseId":"c1"}`, string(env.Payload))
	case <-time.After(time.Second):
		t.Fatal("event not handled")
	}
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.EventsConsumed.WithLabelValues(messaging.ChannelCaseCritical, "ok")) >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestConsumerRecordsFailures(t *testing.T) {
	broker := messaging.NewMemoryBroker()
	m := metrics.New("test", prometheus.NewRegistry())
	c := NewConsumer(broker, ConsumerConfig{RetryAttempts: 2, RetryDelay: time.Millisecond}, logger.Nop(), m)

	var calls atomic.Int32
	c.Handle(messaging.ChannelCaseStatus, func(ctx context.Context, channel string, env Envelope) error {
		calls.Add(1)
		return errors.New("boom")
	})
	startConsumer(t, c)

	require.Eventually(t, func() bool {
		_ = broker.Publish(context.Background(), messaging.ChannelCaseStatus, messaging.Message{Type: "case.status_changed"})
		return testutil.ToFloat64(m.EventsConsumed.WithLabelValues(messaging.ChannelCaseStatus, "failed")) >= 1
	}, time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retry(ctx, 5, time.Hour, func() error { return errors.New("fail") })
	assert.ErrorIs(t, err, context.Canceled)
}
