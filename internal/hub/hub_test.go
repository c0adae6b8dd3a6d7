package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-song-queue/internal/config"
)

func testConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   time.Second,
		PongWait:       2 * time.Second,
		WriteWait:      time.Second,
		MaxMessageSize: 4096,
	}
}

func startHub(t *testing.T, snapshot SnapshotFunc) *Hub {
	t.Helper()
	h := NewHub(testConfig())
	h.SetSnapshotProvider(snapshot)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestRegisterDeliversSnapshotFirst(t *testing.T) {
	h := startHub(t, func() []interface{} {
		return []interface{}{
			map[string]string{"type": "queue"},
			map[string]string{"type": "overlay-theme"},
		}
	})

	c := NewClient("c1", h, nil, h.Config())
	h.Register(c)
	require.NoError(t, h.Broadcast(map[string]string{"type": "update"}))

	assert.Equal(t, "queue", receive(t, c)["type"])
	assert.Equal(t, "overlay-theme", receive(t, c)["type"])
	assert.Equal(t, "update", receive(t, c)["type"])
}

func TestBroadcastReachesAllClients(t *testing.T) {
	h := startHub(t, nil)

	a := NewClient("a", h, nil, h.Config())
	b := NewClient("b", h, nil, h.Config())
	h.Register(a)
	h.Register(b)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Broadcast(map[string]int{"n": 1}))
	assert.Equal(t, float64(1), receive(t, a)["n"])
	assert.Equal(t, float64(1), receive(t, b)["n"])
}

func TestUnregisterClosesSend(t *testing.T) {
	h := startHub(t, nil)

	c := NewClient("c", h, nil, h.Config())
	h.Register(c)
	h.Unregister(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Equal(t, 0, h.ClientCount())
}

func TestSlowClientIsDropped(t *testing.T) {
	h := startHub(t, nil)

	slow := NewClient("slow", h, nil, h.Config())
	h.Register(slow)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	n := 0
	assert.Eventually(t, func() bool {
		for i := 0; i < 64; i++ {
			n++
			_ = h.Broadcast(map[string]int{"n": n})
		}
		return h.ClientCount() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStoppedHubDoesNotBlock(t *testing.T) {
	h := NewHub(testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()
	<-h.done

	c := NewClient("late", h, nil, h.Config())
	h.Register(c)
	h.Unregister(c)
	assert.Equal(t, 0, h.ClientCount())
}

func TestRegisterNeverDeliversBroadcastsOlderThanSnapshot(t *testing.T) {
	for i := 0; i < 50; i++ {
		h := NewHub(testConfig())
		h.SetSnapshotProvider(func() []interface{} {
			return []interface{}{map[string]string{"state": "new"}}
		})

		require.NoError(t, h.Broadcast(map[string]string{"state": "old"}))
		c := NewClient("late", h, nil, h.Config())
		registered := make(chan struct{})
		go func() {
			h.Register(c)
			close(registered)
		}()
		time.Sleep(time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		go h.Run(ctx)
		<-registered

		assert.Equal(t, "new", receive(t, c)["state"])
		select {
		case data := <-c.Send:
			t.Fatalf("iteration %d: unexpected message after snapshot: %s", i, data)
		case <-time.After(5 * time.Millisecond):
		}

		cancel()
		<-h.done
	}
}

func TestRegisterFlushesQueuedBroadcastsToExistingClients(t *testing.T) {
	h := startHub(t, func() []interface{} {
		return []interface{}{map[string]string{"state": "snapshot"}}
	})

	first := NewClient("first", h, nil, h.Config())
	h.Register(first)
	assert.Equal(t, "snapshot", receive(t, first)["state"])

	require.NoError(t, h.Broadcast(map[string]string{"state": "update"}))
	second := NewClient("second", h, nil, h.Config())
	h.Register(second)

	assert.Equal(t, "update", receive(t, first)["state"])
	assert.Equal(t, "snapshot", receive(t, second)["state"])
	select {
	case data := <-second.Send:
		t.Fatalf("unexpected message after snapshot: %s", data)
	case <-time.After(20 * time.Millisecond):
	}
}
