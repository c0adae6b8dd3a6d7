package config

import (
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/weiawesome/wes-io-song-queue/internal/speech"
	pkgconfig "github.com/weiawesome/wes-io-song-queue/pkg/config"
	"github.com/weiawesome/wes-io-song-queue/pkg/database"
	"github.com/weiawesome/wes-io-song-queue/pkg/log"
	"github.com/weiawesome/wes-io-song-queue/pkg/pubsub"
	"github.com/weiawesome/wes-io-song-queue/pkg/storage"
)

// Settings persistence backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendDatabase = "database"
	BackendS3       = "s3"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Settings  SettingsConfig
	Redis     RedisConfig
	Database  database.Config
	Storage   StorageConfig
	PubSub    pubsub.Config `mapstructure:"pubsub"`
	Chat      ChatConfig
	Speech    speech.Config
	Log       log.Config
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

// SettingsConfig selects where overlay settings are persisted.
type SettingsConfig struct {
	Backend  string
	Key      string
	Debounce time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type StorageConfig struct {
	Local storage.LocalConfig
	S3    storage.S3Config
}

// ChatConfig names the default chat targets for announcements.
type ChatConfig struct {
	TwitchChannel     string `mapstructure:"twitch_channel"`
	YouTubeLiveChatID string `mapstructure:"youtube_live_chat_id"`
}

// Load reads ./config/config.yaml and the environment.
func Load() (*Config, error) {
	return LoadFrom("./config")
}

// LoadFrom reads config.yaml from dir and the environment.
func LoadFrom(dir string) (*Config, error) {
	v, err := pkgconfig.Load(dir, "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("settings.backend", BackendFile)
	v.SetDefault("settings.key", "settings.json")
	v.SetDefault("settings.debounce", "250ms")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "data/songqueue.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("storage.local.base_path", "data")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "songqueue")
	bus := pubsub.DefaultConfig()
	v.SetDefault("pubsub.driver", bus.Driver)
	v.SetDefault("pubsub.redis.address", bus.Redis.Address)
	v.SetDefault("pubsub.redis.pool_size", bus.Redis.PoolSize)
	v.SetDefault("pubsub.redis.read_timeout", bus.Redis.ReadTimeout.String())
	v.SetDefault("pubsub.redis.write_timeout", bus.Redis.WriteTimeout.String())
	v.SetDefault("pubsub.kafka.brokers", bus.Kafka.Brokers)
	v.SetDefault("pubsub.kafka.group_id", bus.Kafka.GroupID)
	v.SetDefault("pubsub.kafka.partitions", bus.Kafka.Partitions)
	v.SetDefault("speech.enabled", runtime.GOOS == "darwin")
	v.SetDefault("speech.speed", 1.0)
	v.SetDefault("speech.max_length", speech.DefaultMaxLength)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "songqueue-service")

	// Override from environment
	if err := pkgconfig.BindEnvs(v, map[string]string{
		"server.port":                  "PORT",
		"settings.backend":             "SETTINGS_BACKEND",
		"settings.key":                 "SETTINGS_KEY",
		"redis.address":                "REDIS_ADDRESS",
		"redis.password":               "REDIS_PASSWORD",
		"database.driver":              "DB_DRIVER",
		"database.host":                "DB_HOST",
		"database.user":                "DB_USER",
		"database.password":            "DB_PASSWORD",
		"database.dbname":              "DB_NAME",
		"storage.s3.endpoint":          "S3_ENDPOINT",
		"storage.s3.bucket":            "S3_BUCKET",
		"storage.s3.access_key_id":     "S3_ACCESS_KEY_ID",
		"storage.s3.secret_access_key": "S3_SECRET_ACCESS_KEY",
		"pubsub.driver":                "PUBSUB_DRIVER",
		"pubsub.redis.address":         "PUBSUB_REDIS_ADDRESS",
		"pubsub.kafka.brokers":         "KAFKA_BROKERS",
		"chat.twitch_channel":          "TWITCH_CHANNEL",
		"chat.youtube_live_chat_id":    "YOUTUBE_LIVE_CHAT_ID",
		"speech.enabled":               "TTS_ENABLED",
		"speech.voice":                 "TTS_VOICE",
		"log.level":                    "LOG_LEVEL",
	}); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Server.ShutdownTimeout = parseDuration(v, "server.shutdown_timeout", 10*time.Second)
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Settings.Debounce = parseDuration(v, "settings.debounce", 250*time.Millisecond)
	cfg.PubSub.Redis.ReadTimeout = parseDuration(v, "pubsub.redis.read_timeout", bus.Redis.ReadTimeout)
	cfg.PubSub.Redis.WriteTimeout = parseDuration(v, "pubsub.redis.write_timeout", bus.Redis.WriteTimeout)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
