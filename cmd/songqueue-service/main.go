package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-song-queue/internal/announce"
	"github.com/weiawesome/wes-io-song-queue/internal/command"
	"github.com/weiawesome/wes-io-song-queue/internal/config"
	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/internal/handler"
	"github.com/weiawesome/wes-io-song-queue/internal/hub"
	"github.com/weiawesome/wes-io-song-queue/internal/ingest"
	"github.com/weiawesome/wes-io-song-queue/internal/queue"
	"github.com/weiawesome/wes-io-song-queue/internal/service"
	"github.com/weiawesome/wes-io-song-queue/internal/settings"
	"github.com/weiawesome/wes-io-song-queue/internal/speech"
	"github.com/weiawesome/wes-io-song-queue/pkg/database"
	pkglog "github.com/weiawesome/wes-io-song-queue/pkg/log"
	"github.com/weiawesome/wes-io-song-queue/pkg/pubsub"
	"github.com/weiawesome/wes-io-song-queue/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Event bus to the chat and speech adapters
	bus, err := pubsub.NewPubSub(cfg.PubSub)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to connect to event bus")
	}
	defer bus.Close()
	logger.Info().Str("driver", cfg.PubSub.Driver).Msg("event bus connected")

	// Settings persistence
	persister, closePersister, err := newPersister(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Settings.Backend).Msg("failed to initialize settings backend")
	}
	defer closePersister()

	// Stores
	songs := queue.NewStore()
	settingsStore := settings.NewStore(persister, settings.Options{
		TTSEnabled: cfg.Speech.Enabled,
		Debounce:   cfg.Settings.Debounce,
	})
	settingsStore.LoadInitial(ctx)
	defer settingsStore.Close()

	// Chat side
	announcer := announce.NewAnnouncer(songs, cfg.Chat.TwitchChannel,
		announce.NewBusSayer(bus, domain.PlatformTwitch, cfg.Chat.TwitchChannel),
		announce.NewBusSayer(bus, domain.PlatformYouTube, cfg.Chat.YouTubeLiveChatID),
	)
	speaker := speech.NewPublisher(bus, cfg.Speech)
	router := command.NewRouter(songs, speaker, announcer, settingsStore)
	consumer := ingest.NewConsumer(bus, router)

	// Observer side
	wsHub := hub.NewHub(cfg.WebSocket)
	syncSvc := service.NewSyncService(wsHub, songs, settingsStore)
	wsHub.SetSnapshotProvider(syncSvc.Snapshot)
	if err := syncSvc.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start state sync")
	}
	defer syncSvc.Stop()

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler.NewHandler(songs, settingsStore, announcer).RegisterRoutes(r)
	handler.NewWSHandler(wsHub, syncSvc).RegisterRoutes(r)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wsHub.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		return consumer.Run(gCtx)
	})

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Str("settings_backend", cfg.Settings.Backend).Msg("songqueue-service starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down songqueue-service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server forced to shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("songqueue-service exited with error")
		settingsStore.Close()
		os.Exit(1)
	}

	logger.Info().Msg("songqueue-service stopped")
}

// newPersister builds the settings backend selected by configuration. The
// returned close function releases any connection it opened.
func newPersister(ctx context.Context, cfg *config.Config) (settings.Persister, func(), error) {
	logger := pkglog.L()
	nop := func() {}

	switch cfg.Settings.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nop, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info().Str("address", cfg.Redis.Address).Msg("settings stored in redis")
		return settings.NewRedisPersister(client, cfg.Settings.Key), func() { client.Close() }, nil

	case config.BackendDatabase:
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, nop, err
		}
		if err := database.AutoMigrate(db, &settings.RecordModel{}); err != nil {
			database.Close(db)
			return nil, nop, err
		}
		logger.Info().Str("driver", cfg.Database.Driver).Msg("settings stored in database")
		return settings.NewGormPersister(db, cfg.Settings.Key), func() { database.Close(db) }, nil

	case config.BackendS3:
		s3, err := storage.NewS3Storage(ctx, cfg.Storage.S3)
		if err != nil {
			return nil, nop, err
		}
		logger.Info().Str("bucket", cfg.Storage.S3.Bucket).Msg("settings stored in s3")
		return settings.NewObjectPersister(s3, cfg.Settings.Key), nop, nil

	case config.BackendFile, "":
		local, err := storage.NewLocalStorage(cfg.Storage.Local)
		if err != nil {
			return nil, nop, err
		}
		logger.Info().Str("path", local.BasePath()).Msg("settings stored on local disk")
		return settings.NewObjectPersister(local, cfg.Settings.Key), nop, nil
	}

	return nil, nop, fmt.Errorf("unknown settings backend %q", cfg.Settings.Backend)
}
