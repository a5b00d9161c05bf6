package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

const maxMessagePage = 200

// UseCase mensajería entre usuarios del CRM.
type UseCase struct {
	conversations repository.ConversationRepository
	tx            repository.TxRunner
	now           func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(conversations repository.ConversationRepository, tx repository.TxRunner) *UseCase {
	return &UseCase{conversations: conversations, tx: tx, now: func() time.Time { return time.Now().UTC() }}
}

// CreateConversation crea una conversación; el creador se agrega siempre como participante.
// Dos participantes = direct, más = group.
func (uc *UseCase) CreateConversation(ctx context.Context, userID string, in dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	seen := map[string]bool{userID: true}
	participants := []string{userID}
	for _, id := range in.ParticipantIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		participants = append(participants, id)
	}
	if len(participants) < 2 {
		return nil, domain.Invalid("participant_ids", "debe incluir al menos otro usuario")
	}
	kind := entity.ConversationDirect
	if len(participants) > 2 {
		kind = entity.ConversationGroup
	}
	now := uc.now()
	c := &entity.Conversation{
		ID:             uuid.New().String(),
		Title:          strings.TrimSpace(in.Title),
		Kind:           kind,
		CreatedBy:      userID,
		ParticipantIDs: participants,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.tx.Run(ctx, func(r repository.Repos) error {
		return r.Conversations.Create(ctx, c)
	}); err != nil {
		return nil, err
	}
	out := dto.NewConversationResponse(c)
	return &out, nil
}

// ListConversations conversaciones de usuarios (no IA) del usuario.
func (uc *UseCase) ListConversations(ctx context.Context, userID string) ([]dto.ConversationResponse, error) {
	list, err := uc.conversations.ListForUser(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConversationResponse, 0, len(list))
	for _, c := range list {
		if c.Kind == entity.ConversationAI {
			continue
		}
		out = append(out, dto.NewConversationResponse(c))
	}
	return out, nil
}

// ListMessages últimos mensajes de la conversación; solo para participantes.
func (uc *UseCase) ListMessages(ctx context.Context, userID, conversationID string, limit int) ([]dto.MessageResponse, error) {
	if err := authorize(ctx, uc.conversations, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxMessagePage {
		limit = maxMessagePage
	}
	list, err := uc.conversations.ListMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MessageResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMessageResponse(m))
	}
	return out, nil
}

func authorize(ctx context.Context, repo repository.ConversationRepository, userID, conversationID string) error {
	if _, err := uuid.Parse(conversationID); err != nil {
		return domain.ErrNotFound
	}
	c, err := repo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	ok, err := repo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotParticipant
	}
	return nil
}

// SendMessage inserta el mensaje y actualiza last_message_at en una sola transacción.
// Un no participante recibe ErrNotParticipant y no se inserta nada.
func (uc *UseCase) SendMessage(ctx context.Context, userID string, in dto.SendMessageRequest) (*dto.MessageResponse, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, domain.Invalid("content", "el mensaje no puede estar vacío")
	}
	if in.ConversationID == "" {
		return nil, domain.Invalid("conversationId", "es obligatorio")
	}
	if _, err := uuid.Parse(in.ConversationID); err != nil {
		return nil, domain.ErrNotFound
	}

	sender := userID
	msg := &entity.Message{
		ID:             uuid.New().String(),
		ConversationID: in.ConversationID,
		SenderID:       &sender,
		Role:           entity.MessageRoleUser,
		Content:        content,
		CreatedAt:      uc.now(),
	}
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := authorize(ctx, r.Conversations, userID, in.ConversationID); err != nil {
			return err
		}
		if err := r.Conversations.AddMessage(ctx, msg); err != nil {
			return err
		}
		return r.Conversations.Touch(ctx, in.ConversationID, msg.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewMessageResponse(msg)
	return &out, nil
}
