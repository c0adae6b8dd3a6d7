package command

import (
	"context"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
)

// QueueStore is the part of the queue the router mutates.
type QueueStore interface {
	AddSong(rawTitle, by string) (domain.QueueItem, bool)
	SkipSong() (domain.QueueItem, bool)
	RemoveSong(position int) (domain.QueueItem, bool)
	ClearQueue() bool
	Head(n int) []domain.QueueItem
	Size() int
}

// Speaker reads text aloud. It is fire-and-forget.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// Announcer posts the queue summary to chat and returns the summary.
type Announcer interface {
	Announce(ctx context.Context, channel string) (string, error)
}

// ToggleReader exposes command toggles. known is false for keys the reader
// has no entry for.
type ToggleReader interface {
	Toggle(key string) (enabled, known bool)
}
