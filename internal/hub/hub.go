package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/weiawesome/wes-io-song-queue/internal/config"
	"github.com/weiawesome/wes-io-song-queue/pkg/log"
)

// SnapshotFunc returns the messages a newly registered client receives
// before any broadcast.
type SnapshotFunc func() []interface{}

// Hub fans state messages out to every connected observer. Registration,
// removal and delivery all happen on the Run goroutine. A new client gets its
// snapshot first and only broadcasts queued after it, never older ones.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.RWMutex
	snapshot   SnapshotFunc
	config     config.WebSocketConfig
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		config:     cfg,
	}
}

// SetSnapshotProvider installs the snapshot source. Call it before Run.
func (h *Hub) SetSnapshotProvider(fn SnapshotFunc) {
	h.snapshot = fn
}

// Config returns the websocket settings clients are created with.
func (h *Hub) Config() config.WebSocketConfig {
	return h.config
}

// Run processes hub events until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			// Broadcasts queued before this point are older than the
			// snapshot; the new client must not see them.
			h.drainBroadcasts()
			h.sendSnapshot(client)
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")

		case data := <-h.broadcast:
			h.deliver(data)
		}
	}
}

func (h *Hub) deliver(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			go h.Unregister(client)
		}
	}
}

// drainBroadcasts delivers every queued broadcast to the current clients.
func (h *Hub) drainBroadcasts() {
	for {
		select {
		case data := <-h.broadcast:
			h.deliver(data)
		default:
			return
		}
	}
}

func (h *Hub) sendSnapshot(client *Client) {
	if h.snapshot == nil {
		return
	}
	for _, msg := range h.snapshot() {
		data, err := json.Marshal(msg)
		if err != nil {
			l := log.L()
			l.Error().Err(err).Msg("failed to encode snapshot message")
			continue
		}
		select {
		case client.Send <- data:
		default:
		}
	}
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues message for every registered client. It never blocks;
// when the queue is full the message is dropped and logged.
func (h *Hub) Broadcast(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- data:
	default:
		l := log.L()
		l.Warn().Msg("broadcast queue full, dropping message")
	}
	return nil
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
