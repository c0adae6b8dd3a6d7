package ingest

import (
	"context"
	"fmt"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/pkg/log"
	"github.com/weiawesome/wes-io-song-queue/pkg/pubsub"
)

// Dispatcher runs chat commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt domain.ChatEvent) error
}

// Consumer feeds chat messages published by platform adapters into the
// command router. Replies go back out on the platform's outbound channel.
type Consumer struct {
	bus        pubsub.PubSub
	dispatcher Dispatcher
}

func NewConsumer(bus pubsub.PubSub, d Dispatcher) *Consumer {
	return &Consumer{bus: bus, dispatcher: d}
}

// Run consumes inbound chat events until ctx is cancelled or the
// subscription closes.
func (c *Consumer) Run(ctx context.Context) error {
	eventCh, err := c.bus.SubscribePattern(ctx, pubsub.PatternChatInbound)
	if err != nil {
		return fmt.Errorf("failed to subscribe to chat events: %w", err)
	}

	l := log.L()
	l.Info().Str("pattern", pubsub.PatternChatInbound).Msg("chat consumer started")

	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("chat consumer stopping")
			return nil
		case event, ok := <-eventCh:
			if !ok {
				return nil
			}
			c.handle(ctx, event)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, event *pubsub.Event) {
	l := log.L().With().Str(log.FieldPlatform, event.Platform).Logger()

	if event.Type != pubsub.EventChatMessage {
		l.Debug().Str("type", event.Type).Msg("ignoring non-chat event")
		return
	}
	if event.Platform == "" {
		l.Warn().Msg("dropping chat event without platform")
		return
	}

	var payload pubsub.ChatMessagePayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		l.Warn().Err(err).Msg("failed to decode chat event")
		return
	}

	ctx = log.WithLogger(ctx, l.With().Str(log.FieldChannel, payload.Channel).Logger())
	evt := domain.ChatEvent{
		Platform:      event.Platform,
		Channel:       payload.Channel,
		Message:       payload.Message,
		DisplayName:   payload.DisplayName,
		IsMod:         payload.IsMod,
		IsBroadcaster: payload.IsBroadcaster,
		Self:          payload.Self,
		Reply:         c.replier(ctx, event.Platform, payload.Channel),
	}

	if err := c.dispatcher.Dispatch(ctx, evt); err != nil {
		lc := log.Ctx(ctx)
		lc.Error().Err(err).Msg("chat command failed")
	}
}

func (c *Consumer) replier(ctx context.Context, platform, channel string) func(string) {
	return func(text string) {
		evt, err := pubsub.NewEvent(pubsub.EventChatSay, platform, pubsub.ChatSayPayload{
			Channel: channel,
			Text:    text,
		})
		if err == nil {
			err = c.bus.Publish(ctx, pubsub.ChatOutboundChannel(platform), evt)
		}
		if err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("failed to publish chat reply")
		}
	}
}
