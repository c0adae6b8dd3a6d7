package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/weiawesome/wes-io-song-queue/internal/domain"
	"github.com/weiawesome/wes-io-song-queue/internal/hub"
	"github.com/weiawesome/wes-io-song-queue/internal/service"
	"github.com/weiawesome/wes-io-song-queue/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub     *hub.Hub
	service service.SyncService
}

func NewWSHandler(h *hub.Hub, svc service.SyncService) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
	}
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.hub.Config())

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	l := log.L().With().Str(log.FieldClientID, client.ID).Str(log.FieldMsgType, base.Type).Logger()
	ctx := log.WithLogger(context.Background(), l)

	switch base.Type {
	case domain.MsgTypeCommandToggle:
		var msg domain.CommandToggleMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid command-toggle message"))
			return
		}
		key, enabled, ok := msg.Toggle()
		if !ok {
			l.Debug().Msg("ignored command toggle without string key")
			return
		}
		if err := h.service.HandleCommandToggle(ctx, client, key, enabled); err != nil {
			l.Error().Err(err).Msg("command toggle failed")
		}

	case domain.MsgTypeOverlayAlign:
		var msg domain.OverlayAlignMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid overlay-align message"))
			return
		}
		if err := h.service.HandleOverlayAlign(ctx, client, msg.Update()); err != nil {
			l.Error().Err(err).Msg("overlay align failed")
		}

	case domain.MsgTypeOverlayThemeUpdate:
		var msg domain.OverlayThemeUpdateMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid overlay-theme-update message"))
			return
		}
		if err := h.service.HandleThemeUpdate(ctx, client, stringValues(msg.Theme)); err != nil {
			l.Error().Err(err).Msg("overlay theme update failed")
		}

	case domain.MsgTypePing:
		client.SendMessage(map[string]string{"type": domain.MsgTypePong})

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}

// stringValues keeps only string entries.
func stringValues(raw map[string]interface{}) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/overlay/ws", h.HandleWebSocket)
}
