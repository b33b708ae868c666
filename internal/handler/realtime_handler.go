package handler

import (
	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/internal/pkg/serverutils"
	internalWS "oracle-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RealtimeHandler upgrades authenticated requests to the workspace push socket.
type RealtimeHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewRealtimeHandler(hub *internalWS.Hub, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, logger: log}
}

func (h *RealtimeHandler) RegisterRoutes(router fiber.Router, jwt fiber.Handler) {
	router.Get("/ws", jwt, h.ServeWs)
}

func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	user, err := serverutils.CurrentUser(c)
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("REALTIME", "Starting WebSocket session", map[string]interface{}{"user_id": user.Id.String()})
		internalWS.ServeWs(h.hub, conn, user.Id)
		h.logger.Info("REALTIME", "WebSocket session ended", map[string]interface{}{"user_id": user.Id.String()})
	})(c)
}
