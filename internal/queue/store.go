package queue

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/pkg/log"
)

// Listener receives a snapshot of the queue after a committed mutation.
// Listeners run synchronously on the mutating goroutine while notification
// is serialized: they may read the store, but must return quickly and must
// not call a mutator, which would deadlock. Hand slow work to a goroutine or
// a buffered queue, as the observer hub does.
type Listener func(snapshot []domain.QueueItem)

// Store is the ordered song request queue.
//
// mu guards items. notifyMu is taken before mu is released, so listeners
// observe snapshots in exactly the order mutations were committed, while
// readers are never blocked by slow listeners.
type Store struct {
	mu       sync.RWMutex
	items    []domain.QueueItem
	notifyMu sync.Mutex

	lmu       sync.RWMutex
	listeners map[uint64]Listener
	order     []uint64
	nextID    uint64

	logger zerolog.Logger
}

// NewStore creates an empty queue.
func NewStore() *Store {
	return &Store{
		listeners: make(map[uint64]Listener),
		logger:    log.L().With().Str("component", "queue").Logger(),
	}
}

// AddSong appends a request. It returns false when the sanitized title is empty.
func (s *Store) AddSong(rawTitle, by string) (domain.QueueItem, bool) {
	title := SanitizeTitle(rawTitle)
	if title == "" {
		return domain.QueueItem{}, false
	}
	item := domain.QueueItem{Title: title, By: normalizeRequester(by)}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.commit()
	return item, true
}

// SkipSong removes and returns the head of the queue.
func (s *Store) SkipSong() (domain.QueueItem, bool) {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return domain.QueueItem{}, false
	}
	head := s.items[0]
	s.items = append(s.items[:0:0], s.items[1:]...)
	s.commit()
	return head, true
}

// RemoveSong removes the item at the 1-based position.
func (s *Store) RemoveSong(position int) (domain.QueueItem, bool) {
	s.mu.Lock()
	if position < 1 || position > len(s.items) {
		s.mu.Unlock()
		return domain.QueueItem{}, false
	}
	idx := position - 1
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.commit()
	return removed, true
}

// ClearQueue empties the queue. It returns false if it was already empty.
func (s *Store) ClearQueue() bool {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return false
	}
	s.items = nil
	s.commit()
	return true
}

// GetQueue returns a copy of the queue in request order.
func (s *Store) GetQueue() []domain.QueueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Head returns up to n items from the front of the queue.
func (s *Store) Head(n int) []domain.QueueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.items) {
		n = len(s.items)
	}
	out := make([]domain.QueueItem, n)
	copy(out, s.items[:n])
	return out
}

// Size returns the number of queued requests.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// OnChange registers a listener and returns its unsubscribe function.
// Listeners run in registration order. The next mutation waits until every
// listener of the previous one has returned.
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

// commit must be called with s.mu held for writing. It releases s.mu and
// notifies listeners with a snapshot of the committed state.
func (s *Store) commit() {
	snapshot := s.snapshotLocked()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, l := range s.currentListeners() {
		s.invoke(l, cloneItems(snapshot))
	}
}

func (s *Store) currentListeners() []Listener {
	s.lmu.RLock()
	defer s.lmu.RUnlock()
	out := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.listeners[id])
	}
	return out
}

func (s *Store) invoke(l Listener, snapshot []domain.QueueItem) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("queue listener panicked")
		}
	}()
	l(snapshot)
}

func (s *Store) snapshotLocked() []domain.QueueItem {
	return cloneItems(s.items)
}

func cloneItems(items []domain.QueueItem) []domain.QueueItem {
	out := make([]domain.QueueItem, len(items))
	copy(out, items)
	return out
}
