package messaging

import (
	"context"
)

// Channels carrying triage events.
const (
	ChannelCaseCreated  = "aegis.cases.created"
	ChannelCaseCritical = "aegis.cases.critical"
	ChannelCaseStatus   = "aegis.cases.status"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publisher
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Publisher defines the interface for publishing messages
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Message is the envelope published on every channel.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
