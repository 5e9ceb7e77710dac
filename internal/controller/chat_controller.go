package controller

import (
	"roboto-sai-be/internal/dto"
	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/pkg/serverutils"
	"roboto-sai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.SendChat)
	r.Get("/chat/history", c.GetHistory)
	r.Delete("/chat/history", c.ClearHistory)
}

// SendChat answers with the bare chat body rather than the usual envelope so
// existing chat clients keep working.
func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendChat(ctx.UserContext(), serverutils.UserIDFromCtx(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	key, err := c.sessionKey(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetHistory(ctx.UserContext(), key)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to load history"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history", res))
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	key, err := c.sessionKey(ctx)
	if err != nil {
		return err
	}

	if err := c.service.ClearHistory(ctx.UserContext(), key); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to clear history"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history cleared", fiber.Map{
		"user_id":    key.UserID,
		"session_id": key.SessionID,
	}))
}

func (c *chatController) sessionKey(ctx *fiber.Ctx) (entity.SessionKey, error) {
	var q dto.ChatHistoryQuery
	if err := ctx.QueryParser(&q); err != nil {
		return entity.SessionKey{}, fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return entity.SessionKey{}, err
	}
	userId := q.UserId
	if authId := serverutils.UserIDFromCtx(ctx); authId != "" {
		userId = authId
	}
	return entity.NewSessionKey(userId, q.SessionId), nil
}
