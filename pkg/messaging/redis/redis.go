package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/aegis-triage/pkg/circuitbreaker"
	"github.com/jwalitptl/aegis-triage/pkg/messaging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RedisBroker struct {
	client *redis.Client
	cb     *circuitbreaker.CircuitBreaker
	logger *zerolog.Logger
}

// NewRedisBroker wraps an existing client so the broker and the report
// store can share one connection pool.
func NewRedisBroker(client *redis.Client, logger *zerolog.Logger) messaging.Broker {
	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "redis-broker",
		MaxFailures: 5,
		Interval:    10 * time.Second,
		Timeout:     5 * time.Second,
		Logger:      logger,
	})

	return &RedisBroker{
		client: client,
		cb:     cb,
		logger: logger,
	}
}

func (b *RedisBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return b.cb.Execute(func() error {
		return b.client.Publish(ctx, channel, payload).Err()
	})
}

func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	msgChan := make(chan []byte, 100)

	go func() {
		defer func() {
			pubsub.Close()
			close(msgChan)
		}()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case msgChan <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return msgChan, nil
}

// Close is a no-op. The client is owned and closed by the caller.
func (b *RedisBroker) Close() error {
	return nil
}
