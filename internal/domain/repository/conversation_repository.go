package repository

import (
	"context"
	"time"

	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// ConversationRepository conversaciones, participantes y mensajes.
type ConversationRepository interface {
	// Create inserta la conversación y sus participantes (ParticipantIDs).
	Create(ctx context.Context, c *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	ListForUser(ctx context.Context, userID, kind string) ([]*entity.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)

	AddMessage(ctx context.Context, m *entity.Message) error
	// ListMessages devuelve los últimos `limit` mensajes en orden cronológico.
	ListMessages(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error)
	Touch(ctx context.Context, conversationID string, at time.Time) error
}
