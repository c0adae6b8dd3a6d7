package pubsub

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferDropsAndLogsWhenBufferFull(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ch := make(chan *Event, 1)

	assert.True(t, offer(ch, &Event{Type: EventChatMessage, Platform: "twitch"}, logger))
	assert.Empty(t, buf.String())

	assert.False(t, offer(ch, &Event{Type: EventChatMessage, Platform: "youtube"}, logger))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"platform":"youtube"`)
	assert.Contains(t, buf.String(), "dropping event")

	got := <-ch
	assert.Equal(t, "twitch", got.Platform)
}

func TestDecodeEventRejectsMalformedPayload(t *testing.T) {
	_, err := decodeEvent([]byte(`{"type":`))
	assert.Error(t, err)

	event, err := decodeEvent([]byte(`{"type":"chat_message","platform":"twitch","payload":{"message":"!song x"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventChatMessage, event.Type)
	assert.Equal(t, "twitch", event.Platform)
}

func TestMemoryPubSubDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewMemoryPubSub()
	defer bus.Close()

	ctx := context.Background()
	events, err := bus.Subscribe(ctx, ChatOutboundChannel("twitch"))
	require.NoError(t, err)

	for i := 0; i < cap(events)+5; i++ {
		evt, err := NewEvent(EventChatMessage, "twitch", ChatMessagePayload{Message: "hi"})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(ctx, ChatOutboundChannel("twitch"), evt))
	}

	assert.Equal(t, cap(events), len(events))
}
