package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/jwalitptl/aegis-triage/pkg/logger"
	"github.com/jwalitptl/aegis-triage/pkg/messaging"
	"github.com/jwalitptl/aegis-triage/pkg/metrics"
)

// Envelope is a broker message with its payload left undecoded.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HandlerFunc processes one message from channel.
type HandlerFunc func(ctx context.Context, channel string, env Envelope) error

type ConsumerConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
}

// Consumer subscribes to broker channels and hands each message to the
// handler registered for its channel.
type Consumer struct {
	broker   messaging.Broker
	handlers map[string]HandlerFunc
	config   ConsumerConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewConsumer(broker messaging.Broker, config ConsumerConfig, logger *logger.Logger, metrics *metrics.Metrics) *Consumer {
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	return &Consumer{
		broker:   broker,
		handlers: make(map[string]HandlerFunc),
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}
}

// Handle registers fn for channel. It must be called before Start.
func (c *Consumer) Handle(channel string, fn HandlerFunc) {
	c.handlers[channel] = fn
}

// Start subscribes to every registered channel and blocks until ctx is
// cancelled or a subscription fails.
func (c *Consumer) Start(ctx context.Context) error {
	subs := make(map[string]<-chan []byte, len(c.handlers))
	for channel := range c.handlers {
		ch, err := c.broker.Subscribe(ctx, channel)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		subs[channel] = ch
	}

	c.logger.Info("Starting event consumer", "channels", len(subs))

	p := pool.New().WithContext(ctx)
	for channel, ch := range subs {
		channel, ch := channel, ch
		p.Go(func(ctx context.Context) error {
			c.drain(ctx, channel, ch)
			return nil
		})
	}
	err := p.Wait()
	c.logger.Info("Shutting down event consumer")
	return err
}

func (c *Consumer) drain(ctx context.Context, channel string, ch <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			c.process(ctx, channel, raw)
		}
	}
}

func (c *Consumer) process(ctx context.Context, channel string, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.record(channel, "malformed")
		c.logger.Error(err, "Failed to decode event", "channel", channel)
		return
	}

	handler := c.handlers[channel]
	err := retry(ctx, c.config.RetryAttempts, c.config.RetryDelay, func() error {
		return handler(ctx, channel, env)
	})
	if err != nil {
		c.record(channel, "failed")
		c.logger.Error(err, "Failed to handle event", "channel", channel, "event_type", env.Type)
		return
	}
	c.record(channel, "ok")
}

func (c *Consumer) record(channel, outcome string) {
	if c.metrics != nil {
		c.metrics.EventsConsumed.WithLabelValues(channel, outcome).Inc()
	}
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}
