package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/usecase"
)

// AIHandler maneja el chat con el asistente IA.
type AIHandler struct {
	uc *usecase.AIUseCase
}

// NewAIHandler construye el handler.
func NewAIHandler(uc *usecase.AIUseCase) *AIHandler {
	return &AIHandler{uc: uc}
}

// Chat godoc
// @Summary      Conversar con el asistente IA
// @Description  Crea o continúa una conversación de tipo ai. El historial reciente viaja como
// @Description  contexto al proveedor configurado (Anthropic o Gemini). Timeout interno de 30 s.
// @Tags         ai
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AIChatRequest  true  "message (obligatorio) y conversation_id (opcional)"
// @Success      200   {object}  dto.Response{data=dto.AIChatResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      408   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/ai/chat [post]
func (h *AIHandler) Chat(c *fiber.Ctx) error {
	var req dto.AIChatRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Chat(c.UserContext(), GetUserID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Conversations GET /api/ai/conversations
func (h *AIHandler) Conversations(c *fiber.Ctx) error {
	out, err := h.uc.ListConversations(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Messages GET /api/ai/conversations/:id/messages
func (h *AIHandler) Messages(c *fiber.Ctx) error {
	out, err := h.uc.Messages(c.UserContext(), GetUserID(c), c.Params("id"), c.QueryInt("limit", 100))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, fiber.StatusOK, out)
}
