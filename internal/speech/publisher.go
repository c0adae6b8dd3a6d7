package speech

import (
	"context"
	"regexp"
	"strings"

	"github.com/weiawesome/wes-io-song-queue/pkg/log"
	"github.com/weiawesome/wes-io-song-queue/pkg/pubsub"
)

// DefaultMaxLength caps the spoken text in characters.
const DefaultMaxLength = 200

var noiseRe = regexp.MustCompile(`http\S+|@\w+|#\w+`)

// Config controls the speech publisher.
type Config struct {
	Enabled   bool    `mapstructure:"enabled"`
	Voice     string  `mapstructure:"voice"`
	Speed     float64 `mapstructure:"speed"`
	MaxLength int     `mapstructure:"max_length"`
}

// Publisher forwards utterances to the speech backend over the event bus.
type Publisher struct {
	publisher pubsub.Publisher
	cfg       Config
}

// NewPublisher creates a speech publisher.
func NewPublisher(publisher pubsub.Publisher, cfg Config) *Publisher {
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultMaxLength
	}
	return &Publisher{publisher: publisher, cfg: cfg}
}

// Speak publishes a cleaned utterance. It never blocks the caller on errors;
// failures are logged.
func (p *Publisher) Speak(ctx context.Context, text string) {
	if !p.cfg.Enabled {
		return
	}
	clean := Clean(text, p.cfg.MaxLength)
	if clean == "" {
		return
	}

	l := log.Ctx(ctx)
	evt, err := pubsub.NewEvent(pubsub.EventSpeechRequest, pubsub.PlatformLocal, pubsub.SpeechRequestPayload{
		Text:  clean,
		Voice: p.cfg.Voice,
		Speed: p.cfg.Speed,
	})
	if err != nil {
		l.Error().Err(err).Msg("Failed to build speech request")
		return
	}
	if err := p.publisher.Publish(ctx, pubsub.SpeechRequestChannel(pubsub.PlatformLocal), evt); err != nil {
		l.Warn().Err(err).Msg("Failed to publish speech request")
	}
}

// Clean strips links, mentions and hashtags and caps the result at max
// characters.
func Clean(text string, max int) string {
	clean := strings.Join(strings.Fields(noiseRe.ReplaceAllString(text, "")), " ")
	runes := []rune(clean)
	if max > 0 && len(runes) > max {
		clean = strings.TrimSpace(string(runes[:max]))
	}
	return clean
}
