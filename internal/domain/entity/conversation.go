package entity

import "time"

// Tipos de conversación.
const (
	ConversationDirect = "direct"
	ConversationGroup  = "group"
	ConversationAI     = "ai"
)

// Roles de autor de un mensaje.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Conversation hilo de chat entre usuarios o con el asistente IA.
type Conversation struct {
	ID             string
	Title          string
	Kind           string
	CreatedBy      string
	ParticipantIDs []string
	LastMessageAt  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Message mensaje ordenado dentro de una conversación.
// SenderID es nil para las respuestas del asistente.
type Message struct {
	ID             string
	ConversationID string
	SenderID       *string
	Role           string
	Content        string
	CreatedAt      time.Time
}
