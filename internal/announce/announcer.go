package announce

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/internal/queue"
	"github.com/weiawesome/wes-io-song-queue/pkg/log"
	"github.com/weiawesome/wes-io-song-queue/pkg/pubsub"
)

// ErrNoChannel is returned when neither the caller nor configuration names a
// chat channel to announce on.
var ErrNoChannel = errors.New("no chat channel configured")

// dummyPrefix marks placeholder targets that must never receive messages.
const dummyPrefix = "DUMMY_"

// Sayer posts a line of text to one chat platform. An empty channel means
// the sayer's own default target.
type Sayer interface {
	Platform() string
	Say(ctx context.Context, channel, text string) error
}

// QueueReader is the part of the queue the announcer reads.
type QueueReader interface {
	Head(n int) []domain.QueueItem
}

// Announcer sends the queue summary to every registered chat target.
type Announcer struct {
	queue          QueueReader
	defaultChannel string
	sayers         []Sayer
}

// NewAnnouncer creates an announcer. defaultChannel is used when Announce is
// called without a channel.
func NewAnnouncer(q QueueReader, defaultChannel string, sayers ...Sayer) *Announcer {
	return &Announcer{
		queue:          q,
		defaultChannel: strings.TrimSpace(defaultChannel),
		sayers:         sayers,
	}
}

// Announce resolves the primary channel, builds "Next: <summary>" and posts it
// through every sayer. Failures of individual sayers are logged and do not
// stop the others. The summary is returned.
func (a *Announcer) Announce(ctx context.Context, channel string) (string, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = a.defaultChannel
	}
	if channel == "" {
		return "", ErrNoChannel
	}

	summary := queue.Summarize(a.queue.Head(queue.SummaryLimit))
	text := "Next: " + summary
	l := log.Ctx(ctx)

	for _, s := range a.sayers {
		target := ""
		if s.Platform() == domain.PlatformTwitch {
			target = channel
		}
		if err := s.Say(ctx, target, text); err != nil {
			l.Warn().Err(err).Str(log.FieldPlatform, s.Platform()).Msg("Failed to announce queue")
		}
	}
	return summary, nil
}

// BusSayer publishes outbound chat lines for one platform on the event bus,
// where the platform adapter picks them up.
type BusSayer struct {
	publisher     pubsub.Publisher
	platform      string
	defaultTarget string
}

// NewBusSayer creates a sayer for platform. defaultTarget is used when Say is
// called with an empty channel.
func NewBusSayer(publisher pubsub.Publisher, platform, defaultTarget string) *BusSayer {
	return &BusSayer{
		publisher:     publisher,
		platform:      platform,
		defaultTarget: strings.TrimSpace(defaultTarget),
	}
}

// Platform returns the platform this sayer posts to.
func (b *BusSayer) Platform() string {
	return b.platform
}

// Say publishes text. It does nothing when no usable target is configured.
func (b *BusSayer) Say(ctx context.Context, channel, text string) error {
	target := strings.TrimSpace(channel)
	if target == "" {
		target = b.defaultTarget
	}
	if target == "" || strings.HasPrefix(target, dummyPrefix) {
		return nil
	}

	evt, err := pubsub.NewEvent(pubsub.EventChatSay, b.platform, pubsub.ChatSayPayload{
		Channel: target,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("build say event: %w", err)
	}
	if err := b.publisher.Publish(ctx, pubsub.ChatOutboundChannel(b.platform), evt); err != nil {
		return fmt.Errorf("publish say event: %w", err)
	}
	return nil
}
