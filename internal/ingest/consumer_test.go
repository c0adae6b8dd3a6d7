package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/pkg/pubsub"
)

type echoDispatcher struct {
	mu     sync.Mutex
	events []domain.ChatEvent
	err    error
}

func (d *echoDispatcher) Dispatch(_ context.Context, evt domain.ChatEvent) error {
	d.mu.Lock()
	d.events = append(d.events, evt)
	d.mu.Unlock()
	evt.Reply("echo: " + evt.Message)
	return d.err
}

func (d *echoDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

func publish(bus pubsub.Publisher, platform string, payload pubsub.ChatMessagePayload) {
	evt, err := pubsub.NewEvent(pubsub.EventChatMessage, platform, payload)
	if err != nil {
		return
	}
	_ = bus.Publish(context.Background(), pubsub.ChatInboundChannel(platform), evt)
}

func TestConsumerDispatchesAndReplies(t *testing.T) {
	bus := pubsub.NewMemoryPubSub()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := bus.Subscribe(ctx, pubsub.ChatOutboundChannel(domain.PlatformTwitch))
	require.NoError(t, err)

	d := &echoDispatcher{err: errors.New("logged, not fatal")}
	c := NewConsumer(bus, d)
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		publish(bus, domain.PlatformTwitch, pubsub.ChatMessagePayload{
			Channel:     "#stream",
			Message:     "!song hi",
			DisplayName: "viewer",
			IsMod:       true,
		})
		return d.count() > 0
	}, time.Second, 20*time.Millisecond)

	d.mu.Lock()
	got := d.events[0]
	d.mu.Unlock()
	assert.Equal(t, domain.PlatformTwitch, got.Platform)
	assert.Equal(t, "#stream", got.Channel)
	assert.Equal(t, "!song hi", got.Message)
	assert.True(t, got.Privileged())

	select {
	case evt := <-out:
		var payload pubsub.ChatSayPayload
		require.NoError(t, evt.UnmarshalPayload(&payload))
		assert.Equal(t, pubsub.ChatSayPayload{Channel: "#stream", Text: "echo: !song hi"}, payload)
	case <-time.After(time.Second):
		t.Fatal("no reply published")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConsumerSkipsForeignEvents(t *testing.T) {
	bus := pubsub.NewMemoryPubSub()
	defer bus.Close()
	d := &echoDispatcher{}
	c := NewConsumer(bus, d)

	c.handle(context.Background(), &pubsub.Event{Type: pubsub.EventChatSay, Platform: "twitch"})
	c.handle(context.Background(), &pubsub.Event{Type: pubsub.EventChatMessage, Platform: ""})
	c.handle(context.Background(), &pubsub.Event{Type: pubsub.EventChatMessage, Platform: "twitch", Payload: []byte(`"nope"`)})

	assert.Equal(t, 0, d.count())
}
