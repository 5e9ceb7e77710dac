package handler

import (
	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/pkg/logger"
	"roboto-sai-be/internal/pkg/serverutils"
	internalWS "roboto-sai-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatStreamHandler lets a client watch the events of one chat session live.
type ChatStreamHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewChatStreamHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *ChatStreamHandler {
	return &ChatStreamHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs resolves the session key before upgrading. A token is optional,
// but when one is sent it must be valid and its user wins over the query.
func (h *ChatStreamHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a websocket handshake, so the query
	// param is checked first.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	userId := c.Query("user_id")
	if tokenStr != "" {
		authId, err := serverutils.ParseIdentity(tokenStr, h.jwtSecret)
		if err != nil {
			h.logger.Warn("ChatStreamHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
			return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}
		userId = authId
	}

	key := entity.NewSessionKey(userId, c.Query("session_id"))

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatStreamHandler", "Starting WebSocket session", map[string]interface{}{"session": key.String()})
			internalWS.ServeWs(h.hub, conn, key.String())
			h.logger.Info("ChatStreamHandler", "WebSocket session ended", map[string]interface{}{"session": key.String()})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *ChatStreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/chat/stream", h.ServeWs)
}
