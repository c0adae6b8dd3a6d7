package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/wes-io-song-queue/pkg/pubsub"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, BackendFile, cfg.Settings.Backend)
	assert.Equal(t, "settings.json", cfg.Settings.Key)
	assert.Equal(t, 250*time.Millisecond, cfg.Settings.Debounce)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, int64(4096), cfg.WebSocket.MaxMessageSize)
	assert.Equal(t, "redis", cfg.PubSub.Driver)
	assert.Equal(t, "songqueue", cfg.PubSub.Kafka.GroupID)
	assert.Equal(t, "data", cfg.Storage.Local.BasePath)
	assert.Equal(t, 200, cfg.Speech.MaxLength)
	assert.Equal(t, "songqueue-service", cfg.Log.ServiceName)
}

func TestPubSubDefaultsMatchDriverDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, pubsub.DefaultConfig(), cfg.PubSub)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
settings:
  backend: redis
  debounce: 1s
chat:
  twitch_channel: fromfile
websocket:
  pong_wait: 45s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	t.Setenv("TWITCH_CHANNEL", "fromenv")
	t.Setenv("PORT", "8099")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Settings.Backend)
	assert.Equal(t, time.Second, cfg.Settings.Debounce)
	assert.Equal(t, "fromenv", cfg.Chat.TwitchChannel)
	assert.Equal(t, 8099, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.WebSocket.PongWait)
}
