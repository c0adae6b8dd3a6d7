package settings

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/pkg/log"
)

// DefaultDebounce is the persistence coalescing window.
const DefaultDebounce = 250 * time.Millisecond

const saveTimeout = 5 * time.Second

// ChangeKind names the sub-state an accepted change touched.
type ChangeKind int

const (
	ChangeToggles ChangeKind = iota
	ChangeAlignment
	ChangeTheme
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeToggles:
		return "toggles"
	case ChangeAlignment:
		return "alignment"
	case ChangeTheme:
		return "theme"
	}
	return "unknown"
}

// Change is delivered to listeners after an accepted update.
type Change struct {
	Kind     ChangeKind
	Settings domain.Settings
}

// Listener receives accepted changes in commit order. Listeners run
// synchronously while notification is serialized: they may call Snapshot
// or Toggle, but must return quickly and must not call a setter, which
// would deadlock.
type Listener func(Change)

// Options configures a Store.
type Options struct {
	TTSEnabled bool
	Debounce   time.Duration
}

// Store holds command toggles, overlay alignment and theme as one unit.
// Every accepted change is persisted through a debounced write of the
// full state and fanned out to listeners.
type Store struct {
	mu       sync.RWMutex
	state    domain.Settings
	notifyMu sync.Mutex

	lmu       sync.RWMutex
	listeners map[uint64]Listener
	order     []uint64
	nextID    uint64

	persister Persister
	debouncer *Debouncer
	writeMu   sync.Mutex

	logger zerolog.Logger
}

// NewStore creates a store holding defaults. Call LoadInitial to merge the
// persisted record.
func NewStore(persister Persister, opts Options) *Store {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	s := &Store{
		state:     Defaults(opts.TTSEnabled),
		listeners: make(map[uint64]Listener),
		persister: persister,
		logger:    log.L().With().Str("component", "settings").Logger(),
	}
	s.debouncer = NewDebouncer(opts.Debounce, s.persist)
	return s
}

// LoadInitial merges the persisted record into the defaults and schedules a
// write-back of the normalised state. Missing or unreadable records leave
// the defaults in place.
func (s *Store) LoadInitial(ctx context.Context) domain.Settings {
	l := log.Ctx(ctx)

	raw, err := s.persister.Load(ctx)
	if err != nil {
		l.Warn().Err(err).Msg("failed to read persisted settings, using defaults")
		raw = nil
	}

	s.mu.Lock()
	merged, dropped := mergeRecord(s.state, raw)
	s.state = merged
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if dropped > 0 {
		l.Warn().Int("dropped_fields", dropped).Msg("ignored invalid persisted settings fields")
	}

	s.debouncer.Trigger()
	return snapshot
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Toggle reports whether a command toggle is enabled, and whether key is
// a toggle this store knows about.
func (s *Store) Toggle(key string) (enabled, known bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enabled, known = s.state.CommandToggle[key]
	return enabled, known
}

// SetToggle enables or disables a command. Unknown keys are ignored.
// Setting a toggle always broadcasts the full toggle map, even when the
// value did not change.
func (s *Store) SetToggle(key string, enabled bool) bool {
	if !domain.IsToggleKey(key) {
		return false
	}
	s.mu.Lock()
	s.state.CommandToggle[key] = enabled
	s.commit(ChangeToggles)
	return true
}

// SetAlignment applies a partial alignment update. Unrecognised align
// values are ignored and width is clamped. It reports whether anything
// changed.
func (s *Store) SetAlignment(update domain.AlignmentUpdate) bool {
	s.mu.Lock()
	changed := false
	if update.Align != nil && domain.IsAlign(*update.Align) && *update.Align != s.state.Alignment.Align {
		s.state.Alignment.Align = *update.Align
		changed = true
	}
	if update.Width != nil {
		if width, ok := clampWidth(*update.Width); ok && width != s.state.Alignment.Width {
			s.state.Alignment.Width = width
			changed = true
		}
	}
	if !changed {
		s.mu.Unlock()
		return false
	}
	s.commit(ChangeAlignment)
	return true
}

// SetTheme applies every recognised slot whose value is a valid hex color.
// Invalid candidates are dropped individually. It reports whether any slot
// changed.
func (s *Store) SetTheme(candidates map[string]string) bool {
	s.mu.Lock()
	changed := false
	for _, slot := range domain.ThemeSlots {
		v, ok := candidates[slot]
		if !ok || !IsHexColor(v) || s.state.Theme[slot] == v {
			continue
		}
		s.state.Theme[slot] = v
		changed = true
	}
	if !changed {
		s.mu.Unlock()
		return false
	}
	s.commit(ChangeTheme)
	return true
}

// OnChange registers a listener and returns its unsubscribe function. The
// next accepted change waits until every listener of the previous one has
// returned.
func (s *Store) OnChange(listener Listener) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners[id] = listener
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			defer s.lmu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Close writes any pending state and stops the debouncer.
func (s *Store) Close() {
	s.debouncer.Flush()
	s.debouncer.Stop()
}

// commit must be called with s.mu held for writing. It releases s.mu,
// schedules persistence and notifies listeners in commit order.
func (s *Store) commit(kind ChangeKind) {
	snapshot := s.state.Clone()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.debouncer.Trigger()

	s.lmu.RLock()
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.lmu.RUnlock()

	for _, l := range listeners {
		s.invoke(l, Change{Kind: kind, Settings: snapshot.Clone()})
	}
}

func (s *Store) invoke(l Listener, c Change) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("kind", c.Kind.String()).Msg("settings listener panicked")
		}
	}()
	l(c)
}

// persist writes the latest state. Writes are serialized and each one
// snapshots under writeMu, so the last write always carries the newest state.
func (s *Store) persist() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := encodeRecord(s.Snapshot())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode settings")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := s.persister.Save(ctx, data); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist settings")
		return
	}
	s.logger.Debug().Int("bytes", len(data)).Msg("settings persisted")
}
