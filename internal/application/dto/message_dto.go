package dto

import "time"

// CreateConversationRequest POST /api/messages/conversations. El creador se agrega siempre.
type CreateConversationRequest struct {
	Title          string   `json:"title" validate:"omitempty,max=200"`
	ParticipantIDs []string `json:"participant_ids" validate:"required,min=1,dive,uuid"`
}

// SendMessageRequest POST /api/messages/send-message-mysql y /api/messages/send.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
	Content        string `json:"content" validate:"max=10000"`
}

// ConversationResponse salida de una conversación.
type ConversationResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Kind           string     `json:"kind"`
	CreatedBy      string     `json:"created_by"`
	ParticipantIDs []string   `json:"participant_ids,omitempty"`
	LastMessageAt  *time.Time `json:"last_message_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MessageResponse salida de un mensaje.
type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       *string   `json:"sender_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
