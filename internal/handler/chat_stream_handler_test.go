package handler

import (
	"net/http/httptest"
	"testing"

	"roboto-sai-be/internal/pkg/logger"
	internalWS "roboto-sai-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamApp() *fiber.App {
	app := fiber.New()
	h := NewChatStreamHandler(internalWS.NewHub(nil, logger.NewNopLogger()), "secret", logger.NewNopLogger())
	h.RegisterRoutes(app)
	return app
}

func TestChatStreamHandler_RequiresUpgrade(t *testing.T) {
	resp, err := newStreamApp().Test(httptest.NewRequest("GET", "/chat/stream?session_id=s1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestChatStreamHandler_RejectsBadToken(t *testing.T) {
	resp, err := newStreamApp().Test(httptest.NewRequest("GET", "/chat/stream?token=garbage", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
