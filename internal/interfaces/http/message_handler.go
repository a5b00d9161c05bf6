package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/messaging"
)

// MessageHandler mensajería entre usuarios.
type MessageHandler struct {
	uc *messaging.UseCase
}

// NewMessageHandler construye el handler.
func NewMessageHandler(uc *messaging.UseCase) *MessageHandler {
	return &MessageHandler{uc: uc}
}

// ListConversations GET /api/messages/conversations
func (h *MessageHandler) ListConversations(c *fiber.Ctx) error {
	out, err := h.uc.ListConversations(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// CreateConversation POST /api/messages/conversations (el usuario actual se agrega solo).
func (h *MessageHandler) CreateConversation(c *fiber.Ctx) error {
	var in dto.CreateConversationRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateConversation(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// ListMessages GET /api/messages/conversations/:id/messages?limit=
func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	out, err := h.uc.ListMessages(c.UserContext(), GetUserID(c), c.Params("id"), c.QueryInt("limit", 50))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Send godoc
// @Summary      Enviar mensaje a una conversación
// @Description  Inserta el mensaje y actualiza last_message_at en una transacción.
// @Description  Solo participantes: cualquier otro usuario recibe 403 y no se inserta nada.
// @Tags         messages
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SendMessageRequest  true  "conversationId, content"
// @Success      201   {object}  dto.Response{data=dto.MessageResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/messages/send-message-mysql [post]
// @Router       /api/messages/send [post]
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	var in dto.SendMessageRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SendMessage(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusCreated, out)
}
