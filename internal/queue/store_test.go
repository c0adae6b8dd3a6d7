package queue

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
)

func TestAddSongSanitizesTitle(t *testing.T) {
	s := NewStore()

	item, ok := s.AddSong("  <b>hi</b>  ", "Ann")
	require.True(t, ok)
	assert.Equal(t, domain.QueueItem{Title: "&lt;b&gt;hi&lt;/b&gt;", By: "Ann"}, item)
	assert.Equal(t, 1, s.Size())
}

func TestAddSongRejectsBlankTitle(t *testing.T) {
	s := NewStore()

	for _, raw := range []string{"", "   ", "\t\n"} {
		_, ok := s.AddSong(raw, "x")
		assert.False(t, ok, "title %q", raw)
	}
	assert.Equal(t, 0, s.Size())
}

func TestAddSongDefaultsRequester(t *testing.T) {
	s := NewStore()

	item, ok := s.AddSong("song", "   ")
	require.True(t, ok)
	assert.Equal(t, domain.DefaultRequester, item.By)
}

func TestSanitizeTitleBounds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain", strings.Repeat("a", 500)},
		{"markup", strings.Repeat("<&>\"'", 100)},
		{"mixed", strings.Repeat("ab<", 80)},
		{"multibyte", strings.Repeat("日本", 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeTitle(tt.raw)
			assert.NotEmpty(t, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), domain.MaxTitleLength)
			assert.NotContains(t, got, "<")
			assert.NotContains(t, got, ">")
			assert.False(t, strings.HasSuffix(got, "&"), "dangling entity in %q", got)
		})
	}
}

func TestFIFOOrder(t *testing.T) {
	s := NewStore()
	s.AddSong("A", "x")
	s.AddSong("B", "y")

	item, ok := s.SkipSong()
	require.True(t, ok)
	assert.Equal(t, "A", item.Title)
	assert.Equal(t, []domain.QueueItem{{Title: "B", By: "y"}}, s.GetQueue())
}

func TestSkipSongEmpty(t *testing.T) {
	s := NewStore()
	calls := 0
	s.OnChange(func([]domain.QueueItem) { calls++ })

	_, ok := s.SkipSong()
	assert.False(t, ok)
	assert.Zero(t, calls)
}

func TestRemoveSong(t *testing.T) {
	s := NewStore()
	s.AddSong("A", "x")
	s.AddSong("B", "x")
	s.AddSong("C", "x")

	removed, ok := s.RemoveSong(2)
	require.True(t, ok)
	assert.Equal(t, "B", removed.Title)

	titles := []string{}
	for _, it := range s.GetQueue() {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"A", "C"}, titles)
}

func TestRemoveSongOutOfRange(t *testing.T) {
	s := NewStore()
	s.AddSong("A", "x")
	s.AddSong("B", "x")
	before := s.GetQueue()

	calls := 0
	s.OnChange(func([]domain.QueueItem) { calls++ })

	for _, pos := range []int{-1, 0, 3, 100} {
		_, ok := s.RemoveSong(pos)
		assert.False(t, ok, "position %d", pos)
	}
	assert.Equal(t, before, s.GetQueue())
	assert.Zero(t, calls)
}

func TestClearQueueIdempotent(t *testing.T) {
	s := NewStore()
	s.AddSong("A", "x")

	assert.True(t, s.ClearQueue())
	assert.False(t, s.ClearQueue())
	assert.Zero(t, s.Size())
}

func TestGetQueueIsDefensiveCopy(t *testing.T) {
	s := NewStore()
	s.AddSong("A", "x")

	q := s.GetQueue()
	q[0].Title = "mutated"
	assert.Equal(t, "A", s.GetQueue()[0].Title)
}

func TestHead(t *testing.T) {
	s := NewStore()
	for _, title := range []string{"1", "2", "3"} {
		s.AddSong(title, "x")
	}
	assert.Len(t, s.Head(2), 2)
	assert.Len(t, s.Head(10), 3)
}

func TestListenersReceiveIdenticalSnapshots(t *testing.T) {
	s := NewStore()

	var a, b [][]domain.QueueItem
	s.OnChange(func(snap []domain.QueueItem) { a = append(a, snap) })
	s.OnChange(func(snap []domain.QueueItem) { b = append(b, snap) })

	s.AddSong("A", "x")

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0], b[0])

	a[0][0].Title = "mutated"
	assert.Equal(t, "A", b[0][0].Title)
	assert.Equal(t, "A", s.GetQueue()[0].Title)
}

func TestListenerPanicIsIsolated(t *testing.T) {
	s := NewStore()

	called := false
	s.OnChange(func([]domain.QueueItem) { panic("boom") })
	s.OnChange(func([]domain.QueueItem) { called = true })

	_, ok := s.AddSong("A", "x")
	assert.True(t, ok)
	assert.True(t, called)
	assert.Equal(t, 1, s.Size())
}

func TestUnsubscribe(t *testing.T) {
	s := NewStore()
	calls := 0
	unsubscribe := s.OnChange(func([]domain.QueueItem) { calls++ })

	s.AddSong("A", "x")
	unsubscribe()
	unsubscribe()
	s.AddSong("B", "x")

	assert.Equal(t, 1, calls)
}

func TestNotificationsFollowCommitOrder(t *testing.T) {
	s := NewStore()

	var mu sync.Mutex
	var sizes []int
	s.OnChange(func(snap []domain.QueueItem) {
		mu.Lock()
		sizes = append(sizes, len(snap))
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddSong("song", "x")
		}()
	}
	wg.Wait()

	require.Len(t, sizes, 50)
	for i, n := range sizes {
		assert.Equal(t, i+1, n)
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2", 2, true},
		{" 3 ", 3, true},
		{"2.0", 2, true},
		{"-1", -1, true},
		{"2.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e20", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePosition(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestListenerMayReadStore(t *testing.T) {
	s := NewStore()

	var sizes []int
	var heads []string
	s.OnChange(func([]domain.QueueItem) {
		sizes = append(sizes, s.Size())
		if h := s.Head(1); len(h) > 0 {
			heads = append(heads, h[0].Title)
		}
	})

	s.AddSong("A", "")
	s.AddSong("B", "")
	s.SkipSong()

	assert.Equal(t, []int{1, 2, 1}, sizes)
	assert.Equal(t, []string{"A", "A", "B"}, heads)
}

func TestBlockedListenerDoesNotBlockReaders(t *testing.T) {
	s := NewStore()

	entered := make(chan struct{})
	release := make(chan struct{})
	s.OnChange(func([]domain.QueueItem) {
		close(entered)
		<-release
	})

	done := make(chan struct{})
	go func() {
		s.AddSong("A", "")
		close(done)
	}()
	<-entered

	assert.Equal(t, 1, s.Size())
	assert.Len(t, s.GetQueue(), 1)

	close(release)
	<-done
}
