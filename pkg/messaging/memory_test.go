package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBrokerDelivers(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, ChannelCaseCritical)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, ChannelCaseCritical, Message{Type: "case.critical", Payload: map[string]int{"esi": 1}}))

	select {
	case raw := <-ch:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "case.critical", msg.Type)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestMemoryBrokerIgnoresOtherChannels(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ch, err := b.Subscribe(context.Background(), ChannelCaseStatus)
	require.NoError(t, err)
	require.NoError(t, b.Publish(context.Background(), ChannelCaseCreated, "x"))

	select {
	case <-ch:
		t.Fatal("unexpected delivery")
	default:
	}
}

func TestMemoryBrokerClosed(t *testing.T) {
	b := NewMemoryBroker()
	require.NoError(t, b.Close())
	assert.Error(t, b.Publish(context.Background(), ChannelCaseCreated, "x"))
}
