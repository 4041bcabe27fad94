package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/logic-legends/triage-service/internal/api/dto"
	"github.com/logic-legends/triage-service/internal/domain"
	"github.com/logic-legends/triage-service/internal/service"
	apperrors "github.com/logic-legends/triage-service/pkg/util/errorutil"
)

// ChatHandler runs assistant conversations over HTTP.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs the handler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// StartSession POST /chat/sessions.
func (h *ChatHandler) StartSession(c *fiber.Ctx) error {
	session := h.chat.StartSession()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromChatSession(session)})
}

// SendMessage POST /chat/sessions/:id/messages.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req dto.SendChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}

	result, err := h.chat.SendMessage(c.UserContext(), c.Params("id"), req.Content, domain.CustomerInfo{
		Name:  req.CustomerName,
		Email: req.CustomerEmail,
		Phone: req.CustomerPhone,
	})
	if err != nil {
		return err
	}

	resp := dto.SendChatMessageResponse{
		Reply:            dto.FromChatMessage(result.Reply),
		SuggestedActions: result.SuggestedActions,
	}
	if result.Ticket != nil {
		ticket := dto.FromTicket(result.Ticket)
		resp.Ticket = &ticket
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetSession GET /chat/sessions/:id.
func (h *ChatHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.chat.GetSession(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromChatSession(session)})
}

// DeleteSession DELETE /chat/sessions/:id.
func (h *ChatHandler) DeleteSession(c *fiber.Ctx) error {
	if err := h.chat.DeleteSession(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
