package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	"github.com/rs/zerolog"
)

// MemoryPubSub is an in-process bus. It backs demo mode, where no external
// adapters run, and tests.
type MemoryPubSub struct {
	mu     sync.RWMutex
	subs   map[string]*memorySub
	closed bool
	logger zerolog.Logger
}

type memorySub struct {
	pattern bool
	ch      chan *Event
	cancel  context.CancelFunc
}

// NewMemoryPubSub creates an empty in-process bus.
func NewMemoryPubSub() *MemoryPubSub {
	return &MemoryPubSub{subs: make(map[string]*memorySub), logger: busLogger("memory")}
}

// Publish delivers the event to every matching subscriber without blocking.
// Events are round-tripped through JSON so subscribers never share memory
// with the publisher.
func (m *MemoryPubSub) Publish(ctx context.Context, channel string, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("pubsub closed")
	}

	for key, sub := range m.subs {
		if !matches(key, sub.pattern, channel) {
			continue
		}
		copied, err := decodeEvent(data)
		if err != nil {
			return fmt.Errorf("failed to copy event: %w", err)
		}
		offer(sub.ch, copied, m.logger.With().Str("subscription", key).Logger())
	}
	return nil
}

func matches(key string, pattern bool, channel string) bool {
	if !pattern {
		return key == channel
	}
	ok, err := path.Match(key, channel)
	return err == nil && ok
}

// Subscribe subscribes to a specific channel.
func (m *MemoryPubSub) Subscribe(ctx context.Context, channel string) (<-chan *Event, error) {
	return m.subscribe(ctx, channel, false)
}

// SubscribePattern subscribes to channels matching a glob pattern.
func (m *MemoryPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *Event, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return m.subscribe(ctx, pattern, true)
}

func (m *MemoryPubSub) subscribe(ctx context.Context, key string, pattern bool) (<-chan *Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("pubsub closed")
	}

	if existing, ok := m.subs[key]; ok {
		existing.cancel()
		close(existing.ch)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &memorySub{pattern: pattern, ch: make(chan *Event, 100), cancel: cancel}
	m.subs[key] = sub

	go func() {
		<-subCtx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		if current, ok := m.subs[key]; ok && current == sub {
			delete(m.subs, key)
			close(sub.ch)
		}
	}()

	return sub.ch, nil
}

// Unsubscribe unsubscribes from a channel or pattern.
func (m *MemoryPubSub) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.subs[channel]; ok {
		delete(m.subs, channel)
		sub.cancel()
		close(sub.ch)
	}
	return nil
}

// Close drops every subscription.
func (m *MemoryPubSub) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, sub := range m.subs {
		delete(m.subs, key)
		sub.cancel()
		close(sub.ch)
	}
	m.closed = true
	return nil
}
