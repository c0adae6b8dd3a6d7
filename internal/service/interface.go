package service

import (
	"context"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/internal/hub"
	"github.com/weiawesome/wes-io-song-queue/internal/queue"
	"github.com/weiawesome/wes-io-song-queue/internal/settings"
)

// SyncService keeps every observer in step with the queue and settings.
type SyncService interface {
	// Snapshot returns the full-state messages a new observer starts from.
	Snapshot() []interface{}
	HandleCommandToggle(ctx context.Context, client *hub.Client, key string, enabled bool) error
	HandleOverlayAlign(ctx context.Context, client *hub.Client, update domain.AlignmentUpdate) error
	HandleThemeUpdate(ctx context.Context, client *hub.Client, theme map[string]string) error
	Start(ctx context.Context) error
	Stop() error
}

// Broadcaster delivers a message to every observer.
type Broadcaster interface {
	Broadcast(message interface{}) error
}

// QueueSource is the read side of the song queue.
type QueueSource interface {
	GetQueue() []domain.QueueItem
	OnChange(listener queue.Listener) func()
}

// SettingsSource is the settings store as seen by observers.
type SettingsSource interface {
	Snapshot() domain.Settings
	SetToggle(key string, enabled bool) bool
	SetAlignment(update domain.AlignmentUpdate) bool
	SetTheme(candidates map[string]string) bool
	OnChange(listener settings.Listener) func()
}
