package dto

// AIChatRequest POST /api/ai/chat. Sin conversation_id se crea una conversación nueva.
type AIChatRequest struct {
	ConversationID string `json:"conversation_id" validate:"omitempty,uuid"`
	Message        string `json:"message" validate:"required,max=8000"`
}

// AIChatResponse mensaje del usuario y respuesta del asistente.
type AIChatResponse struct {
	ConversationID string          `json:"conversation_id"`
	UserMessage    MessageResponse `json:"user_message"`
	Reply          MessageResponse `json:"reply"`
	Provider       string          `json:"provider"`
}
