package pubsub

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	pkglog "github.com/weiawesome/wes-io-song-queue/pkg/log"
)

// busLogger returns the process logger tagged with the bus driver.
func busLogger(driver string) zerolog.Logger {
	return pkglog.L().With().Str("component", "pubsub").Str("driver", driver).Logger()
}

// decodeEvent parses a wire payload into an Event.
func decodeEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}

// offer hands event to a subscriber without blocking. A full buffer drops
// the event and reports false.
func offer(eventCh chan<- *Event, event *Event, logger zerolog.Logger) bool {
	select {
	case eventCh <- event:
		return true
	default:
		logger.Warn().
			Str("event_type", event.Type).
			Str("platform", event.Platform).
			Msg("subscriber buffer full, dropping event")
		return false
	}
}
