package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-song-queue/internal/announce"
	"github.com/weiawesome/wes-io-song-queue/internal/audit"
	"github.com/weiawesome/wes-io-song-queue/internal/command"
	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/internal/queue"
	"github.com/weiawesome/wes-io-song-queue/pkg/log"
	"github.com/weiawesome/wes-io-song-queue/pkg/response"
)

// CodeAnnounceFailed is returned when the queue could not be announced.
const CodeAnnounceFailed = "ANNOUNCE_FAILED"

// QueueStore is the queue as seen by the HTTP API.
type QueueStore interface {
	command.QueueStore
	GetQueue() []domain.QueueItem
}

// SettingsReader exposes the current settings.
type SettingsReader interface {
	Snapshot() domain.Settings
}

// Handler handles HTTP requests for the song queue.
type Handler struct {
	queue     QueueStore
	settings  SettingsReader
	announcer command.Announcer
}

// NewHandler creates a new HTTP handler.
func NewHandler(q QueueStore, s SettingsReader, a command.Announcer) *Handler {
	return &Handler{
		queue:     q,
		settings:  s,
		announcer: a,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		q := api.Group("/queue")
		{
			q.GET("", h.GetQueue)
			q.POST("", h.AddSong)
			q.POST("/skip", h.SkipSong)
			q.POST("/remove", h.RemoveSong)
			q.POST("/clear", h.ClearQueue)
			q.POST("/announce", h.Announce)
		}
		api.GET("/settings", h.GetSettings)
	}
}

// GetQueue returns the current queue.
func (h *Handler) GetQueue(c *gin.Context) {
	response.Success(c, h.queue.GetQueue())
}

// AddSong appends a song.
func (h *Handler) AddSong(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.AddSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind add song request")
		response.BadRequest(c, "title is required")
		return
	}

	item, ok := h.queue.AddSong(req.TitleText(), req.Requester())
	if !ok {
		response.BadRequest(c, "title is required")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionQueueAdd, audit.SourceHTTP, item.By, item.Title, "song added")
	response.Created(c, domain.AddSongResponse{Added: item, Size: h.queue.Size()})
}

// SkipSong drops the head of the queue.
func (h *Handler) SkipSong(c *gin.Context) {
	ctx := c.Request.Context()

	item, ok := h.queue.SkipSong()
	if !ok {
		response.BadRequest(c, "queue is empty")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionQueueSkip, audit.SourceHTTP, c.ClientIP(), item.Title, "song skipped")
	response.Success(c, domain.SkipSongResponse{Skipped: item, Size: h.queue.Size()})
}

// RemoveSong removes the song at a 1-based position.
func (h *Handler) RemoveSong(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.RemoveSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind remove song request")
		response.BadRequest(c, "provide a valid position")
		return
	}

	position, ok := queue.ParsePosition(req.Index.String())
	if !ok {
		response.BadRequest(c, "provide a valid position")
		return
	}
	item, ok := h.queue.RemoveSong(position)
	if !ok {
		response.BadRequest(c, "provide a valid position")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionQueueRemove, audit.SourceHTTP, c.ClientIP(),
		fmt.Sprintf("#%d %s", position, item.Title), "song removed")
	response.Success(c, domain.RemoveSongResponse{Removed: item, Size: h.queue.Size()})
}

// ClearQueue empties the queue.
func (h *Handler) ClearQueue(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.queue.ClearQueue() {
		response.BadRequest(c, "queue already empty")
		return
	}

	audit.Log(ctx, audit.ActionQueueClear, audit.SourceHTTP, c.ClientIP(), "queue cleared")
	response.Success(c, domain.ClearQueueResponse{Cleared: true})
}

// Announce posts the queue summary to chat.
func (h *Handler) Announce(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	summary, err := h.announcer.Announce(ctx, "")
	if err != nil {
		if errors.Is(err, announce.ErrNoChannel) {
			response.Error(c, http.StatusInternalServerError, CodeAnnounceFailed, err.Error())
			return
		}
		l.Error().Err(err).Msg("failed to announce queue")
		response.Error(c, http.StatusInternalServerError, CodeAnnounceFailed, "failed to announce queue")
		return
	}

	audit.LogWithDetail(ctx, audit.ActionQueueAnnounce, audit.SourceHTTP, c.ClientIP(), summary, "queue announced")
	response.Success(c, domain.AnnounceResponse{Announced: summary})
}

// GetSettings returns the full settings snapshot.
func (h *Handler) GetSettings(c *gin.Context) {
	response.Success(c, h.settings.Snapshot())
}
