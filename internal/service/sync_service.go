package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/weiawesome/wes-io-song-queue/internal/audit"
	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/internal/hub"
	"github.com/weiawesome/wes-io-song-queue/internal/settings"
	"github.com/weiawesome/wes-io-song-queue/pkg/log"
)

type syncService struct {
	broadcaster Broadcaster
	queue       QueueSource
	settings    SettingsSource

	mu     sync.Mutex
	cancel []func()
}

func NewSyncService(b Broadcaster, q QueueSource, s SettingsSource) SyncService {
	return &syncService{
		broadcaster: b,
		queue:       q,
		settings:    s,
	}
}

func (s *syncService) Snapshot() []interface{} {
	st := s.settings.Snapshot()
	return []interface{}{
		domain.NewCommandToggleSnapshotMessage(st.CommandToggle),
		domain.NewOverlayAlignMessage(st.Alignment),
		domain.NewOverlayThemeMessage(st.Theme),
		domain.NewQueueMessage(s.queue.GetQueue()),
	}
}

// Start subscribes to both stores. Every committed change is broadcast as
// a full-state message of the affected kind.
func (s *syncService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cancel) > 0 {
		return fmt.Errorf("sync service already started")
	}

	s.cancel = append(s.cancel,
		s.queue.OnChange(func(items []domain.QueueItem) {
			s.broadcast(domain.NewQueueMessage(items))
		}),
		s.settings.OnChange(func(c settings.Change) {
			switch c.Kind {
			case settings.ChangeToggles:
				s.broadcast(domain.NewCommandToggleSnapshotMessage(c.Settings.CommandToggle))
			case settings.ChangeAlignment:
				s.broadcast(domain.NewOverlayAlignMessage(c.Settings.Alignment))
			case settings.ChangeTheme:
				s.broadcast(domain.NewOverlayThemeMessage(c.Settings.Theme))
			}
		}),
	)

	l := log.Ctx(ctx)
	l.Info().Msg("state sync started")
	return nil
}

func (s *syncService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cancel := range s.cancel {
		cancel()
	}
	s.cancel = nil
	return nil
}

func (s *syncService) broadcast(msg interface{}) {
	if err := s.broadcaster.Broadcast(msg); err != nil {
		l := log.L()
		l.Error().Err(err).Msg("failed to broadcast state")
	}
}

func (s *syncService) HandleCommandToggle(ctx context.Context, c *hub.Client, key string, enabled bool) error {
	if !s.settings.SetToggle(key, enabled) {
		l := log.Ctx(ctx)
		l.Debug().Str(log.FieldClientID, c.ID).Str("key", key).Msg("ignored unknown command toggle")
		return nil
	}
	audit.LogWithDetail(ctx, audit.ActionSettingsWrite, audit.SourceObserver, c.ID,
		fmt.Sprintf("%s=%t", key, enabled), "command toggle updated")
	return nil
}

func (s *syncService) HandleOverlayAlign(ctx context.Context, c *hub.Client, update domain.AlignmentUpdate) error {
	if !s.settings.SetAlignment(update) {
		return nil
	}
	a := s.settings.Snapshot().Alignment
	audit.LogWithDetail(ctx, audit.ActionSettingsWrite, audit.SourceObserver, c.ID,
		fmt.Sprintf("align=%s width=%d", a.Align, a.Width), "overlay alignment updated")
	return nil
}

func (s *syncService) HandleThemeUpdate(ctx context.Context, c *hub.Client, theme map[string]string) error {
	if !s.settings.SetTheme(theme) {
		return nil
	}
	audit.Log(ctx, audit.ActionSettingsWrite, audit.SourceObserver, c.ID, "overlay theme updated")
	return nil
}
