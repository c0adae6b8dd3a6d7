package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
)

const testDebounce = 20 * time.Millisecond

type memoryPersister struct {
	mu      sync.Mutex
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func (p *memoryPersister) Load(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data, p.loadErr
}

func (p *memoryPersister) Save(ctx context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.data = append([]byte(nil), data...)
	return nil
}

func (p *memoryPersister) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

func (p *memoryPersister) saved(t *testing.T) domain.Settings {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	var s domain.Settings
	require.NoError(t, json.Unmarshal(p.data, &s))
	return s
}

func (p *memoryPersister) setSaveErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saveErr = err
}

func newTestStore(p *memoryPersister) *Store {
	return NewStore(p, Options{TTSEnabled: false, Debounce: testDebounce})
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestLoadInitialCorruptRecordUsesDefaultsAndWritesBackOnce(t *testing.T) {
	for _, raw := range []string{"", "{not json", "[]", "null"} {
		t.Run(raw, func(t *testing.T) {
			p := &memoryPersister{data: []byte(raw)}
			s := newTestStore(p)

			got := s.LoadInitial(context.Background())
			assert.Equal(t, Defaults(false), got)

			require.Eventually(t, func() bool { return p.saveCount() == 1 }, time.Second, 5*time.Millisecond)
			time.Sleep(5 * testDebounce)
			assert.Equal(t, 1, p.saveCount())
			assert.Equal(t, Defaults(false), p.saved(t))
		})
	}
}

func TestLoadInitialReadErrorUsesDefaults(t *testing.T) {
	p := &memoryPersister{loadErr: errors.New("disk gone")}
	s := newTestStore(p)

	assert.Equal(t, Defaults(false), s.LoadInitial(context.Background()))
}

func TestLoadInitialMergesValidFieldsOnly(t *testing.T) {
	raw := `{
		"commandToggle": {"skip": true, "queue": "yes", "bogus": true, "tts": null},
		"alignment": {"align": "diagonal", "width": 5000},
		"theme": {"overlayBg": "#000000", "queueBg": "red", "textPrimary": 12, "extra": "#123456"},
		"unknown": 1
	}`
	p := &memoryPersister{data: []byte(raw)}
	s := newTestStore(p)

	got := s.LoadInitial(context.Background())
	want := Defaults(false)
	want.CommandToggle[domain.ToggleSkip] = true
	want.Alignment.Width = domain.MaxQueueWidth
	want.Theme[domain.ThemeOverlayBg] = "#000000"

	assert.Equal(t, want, got)
	_, known := s.Toggle("bogus")
	assert.False(t, known)
	assert.NotContains(t, got.Theme, "extra")
}

func TestSetToggle(t *testing.T) {
	p := &memoryPersister{}
	s := newTestStore(p)

	var changes []Change
	s.OnChange(func(c Change) { changes = append(changes, c) })

	assert.False(t, s.SetToggle("dance", true))
	assert.Empty(t, changes)

	assert.True(t, s.SetToggle(domain.ToggleSkip, true))
	enabled, known := s.Toggle(domain.ToggleSkip)
	assert.True(t, known)
	assert.True(t, enabled)

	require.Len(t, changes, 1)
	assert.Equal(t, ChangeToggles, changes[0].Kind)
	assert.True(t, changes[0].Settings.CommandToggle[domain.ToggleSkip])
}

func TestSetAlignmentClampsWidth(t *testing.T) {
	s := newTestStore(&memoryPersister{})

	assert.True(t, s.SetAlignment(domain.AlignmentUpdate{Width: floatPtr(50)}))
	assert.Equal(t, 320, s.Snapshot().Alignment.Width)

	assert.True(t, s.SetAlignment(domain.AlignmentUpdate{Width: floatPtr(5000)}))
	assert.Equal(t, 960, s.Snapshot().Alignment.Width)

	assert.True(t, s.SetAlignment(domain.AlignmentUpdate{Width: floatPtr(600.4)}))
	assert.Equal(t, 600, s.Snapshot().Alignment.Width)
}

func TestSetAlignmentNoChange(t *testing.T) {
	s := newTestStore(&memoryPersister{})
	calls := 0
	s.OnChange(func(Change) { calls++ })

	assert.False(t, s.SetAlignment(domain.AlignmentUpdate{}))
	assert.False(t, s.SetAlignment(domain.AlignmentUpdate{Align: strPtr("diagonal")}))
	assert.False(t, s.SetAlignment(domain.AlignmentUpdate{Align: strPtr(domain.AlignCenter), Width: floatPtr(560)}))
	assert.Zero(t, calls)

	assert.True(t, s.SetAlignment(domain.AlignmentUpdate{Align: strPtr(domain.AlignLeft), Width: floatPtr(560)}))
	assert.Equal(t, domain.Alignment{Align: domain.AlignLeft, Width: 560}, s.Snapshot().Alignment)
	assert.Equal(t, 1, calls)
}

func TestSetThemeAppliesOnlyValidSlots(t *testing.T) {
	s := newTestStore(&memoryPersister{})
	before := s.Snapshot().Theme

	changed := s.SetTheme(map[string]string{
		domain.ThemeOverlayBg: "#abcdef",
		domain.ThemeQueueBg:   "#12345",
		"notASlot":            "#000000",
	})
	assert.True(t, changed)

	theme := s.Snapshot().Theme
	assert.Equal(t, "#abcdef", theme[domain.ThemeOverlayBg])
	assert.Equal(t, before[domain.ThemeQueueBg], theme[domain.ThemeQueueBg])
	assert.NotContains(t, theme, "notASlot")
}

func TestSetThemeNoValidChange(t *testing.T) {
	s := newTestStore(&memoryPersister{})
	current := s.Snapshot().Theme

	assert.False(t, s.SetTheme(map[string]string{domain.ThemeOverlayBg: current[domain.ThemeOverlayBg]}))
	assert.False(t, s.SetTheme(map[string]string{domain.ThemeOverlayBg: "blue"}))
}

func TestBurstCollapsesToOneWriteOfLatestState(t *testing.T) {
	p := &memoryPersister{}
	s := newTestStore(p)

	for w := 400; w < 420; w++ {
		s.SetAlignment(domain.AlignmentUpdate{Width: floatPtr(float64(w))})
	}

	require.Eventually(t, func() bool { return p.saveCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(5 * testDebounce)
	assert.Equal(t, 1, p.saveCount())
	assert.Equal(t, 419, p.saved(t).Alignment.Width)
}

func TestSaveFailureIsRetriedOnNextChange(t *testing.T) {
	p := &memoryPersister{}
	p.setSaveErr(errors.New("read-only filesystem"))
	s := newTestStore(p)

	s.SetToggle(domain.ToggleClear, true)
	require.Eventually(t, func() bool { return p.saveCount() == 1 }, time.Second, 5*time.Millisecond)

	enabled, _ := s.Toggle(domain.ToggleClear)
	assert.True(t, enabled, "in-memory state stays authoritative")

	p.setSaveErr(nil)
	s.SetToggle(domain.ToggleRemove, true)
	require.Eventually(t, func() bool { return p.saveCount() == 2 }, time.Second, 5*time.Millisecond)

	saved := p.saved(t)
	assert.True(t, saved.CommandToggle[domain.ToggleClear])
	assert.True(t, saved.CommandToggle[domain.ToggleRemove])
}

func TestCloseFlushesPendingWrite(t *testing.T) {
	p := &memoryPersister{}
	s := NewStore(p, Options{Debounce: time.Hour})

	s.SetToggle(domain.ToggleQueue, true)
	assert.Zero(t, p.saveCount())

	s.Close()
	assert.Equal(t, 1, p.saveCount())
	assert.True(t, p.saved(t).CommandToggle[domain.ToggleQueue])

	s.SetToggle(domain.ToggleQueue, false)
	time.Sleep(5 * testDebounce)
	assert.Equal(t, 1, p.saveCount())
}

func TestListenerPanicDoesNotBlockOthers(t *testing.T) {
	s := newTestStore(&memoryPersister{})

	got := 0
	s.OnChange(func(Change) { panic("boom") })
	s.OnChange(func(Change) { got++ })

	s.SetToggle(domain.ToggleSong, false)
	assert.Equal(t, 1, got)
}

func TestSnapshotIsDefensive(t *testing.T) {
	s := newTestStore(&memoryPersister{})

	snap := s.Snapshot()
	snap.CommandToggle[domain.ToggleSong] = false
	snap.Theme[domain.ThemeQueueBg] = "#000000"

	enabled, _ := s.Toggle(domain.ToggleSong)
	assert.True(t, enabled)
	assert.Equal(t, "#1f2937", s.Snapshot().Theme[domain.ThemeQueueBg])
}

func TestListenerMayReadStore(t *testing.T) {
	s := newTestStore(&memoryPersister{})
	t.Cleanup(s.Close)

	var seen []bool
	s.OnChange(func(c Change) {
		enabled, _ := s.Toggle(domain.ToggleQueue)
		seen = append(seen, enabled)
		assert.Equal(t, c.Settings.CommandToggle, s.Snapshot().CommandToggle)
	})

	s.SetToggle(domain.ToggleQueue, true)
	s.SetToggle(domain.ToggleQueue, false)

	assert.Equal(t, []bool{true, false}, seen)
}
