package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/logger"
)

const (
	defaultHistoryLimit = 20
	aiChatTimeout       = 30 * time.Second
	aiTitleMaxRunes     = 60
)

const aiSystemPrompt = `Eres el asistente del CRM comercial de la empresa. Ayudas a vendedores,
upsellers y project managers con redacción de mensajes a clientes, seguimiento de leads,
resúmenes de proyectos y buenas prácticas de venta. Responde en español, de forma breve y concreta.
Si te piden datos del CRM que no aparecen en la conversación, di que no tienes acceso a ellos.`

// AIConfig parámetros del chat IA.
type AIConfig struct {
	HistoryLimit int
	Timeout      time.Duration
}

// AIUseCase orquesta el chat con el asistente IA y persiste el historial.
// Aplica un timeout en cada llamada al LLM para evitar que las latencias externas
// bloqueen los goroutines del servidor.
type AIUseCase struct {
	llm           ports.ChatLLM
	conversations repository.ConversationRepository
	tx            repository.TxRunner
	limiter       *UserLimiter
	cfg           AIConfig
	metrics       ports.Metrics
	log           *logger.Logger
}

// NewAIUseCase construye el caso de uso. llm nil = proveedor no configurado (503).
func NewAIUseCase(
	llm ports.ChatLLM,
	conversations repository.ConversationRepository,
	tx repository.TxRunner,
	limiter *UserLimiter,
	cfg AIConfig,
	metrics ports.Metrics,
	log *logger.Logger,
) *AIUseCase {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = aiChatTimeout
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AIUseCase{
		llm:           llm,
		conversations: conversations,
		tx:            tx,
		limiter:       limiter,
		cfg:           cfg,
		metrics:       metrics,
		log:           log.Component("ai"),
	}
}

func titleFrom(msg string) string {
	msg = strings.Join(strings.Fields(msg), " ")
	if utf8.RuneCountInString(msg) <= aiTitleMaxRunes {
		return msg
	}
	return string([]rune(msg)[:aiTitleMaxRunes]) + "…"
}

func (uc *AIUseCase) aiConversation(ctx context.Context, userID, id string) (*entity.Conversation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	c, err := uc.conversations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.Kind != entity.ConversationAI {
		return nil, domain.ErrNotFound
	}
	ok, err := uc.conversations.IsParticipant(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotParticipant
	}
	return c, nil
}

// Chat guarda el mensaje del usuario, envía el historial reciente al LLM y guarda la respuesta.
//
// Errores:
//   - domain.ErrRateLimited        el usuario excedió su cuota.
//   - domain.ErrUnavailable        proveedor no configurado.
//   - context.DeadlineExceeded     el LLM no respondió a tiempo (el mensaje del usuario queda guardado).
func (uc *AIUseCase) Chat(ctx context.Context, userID string, req dto.AIChatRequest) (*dto.AIChatResponse, error) {
	content := strings.TrimSpace(req.Message)
	if content == "" {
		return nil, domain.Invalid("message", "es obligatorio")
	}
	if !uc.limiter.Allow(userID) {
		return nil, domain.ErrRateLimited
	}
	if uc.llm == nil {
		return nil, domain.ErrUnavailable
	}

	now := time.Now().UTC()
	var conv *entity.Conversation
	if req.ConversationID != "" {
		c, err := uc.aiConversation(ctx, userID, req.ConversationID)
		if err != nil {
			return nil, err
		}
		conv = c
	} else {
		conv = &entity.Conversation{
			ID:             uuid.New().String(),
			Title:          titleFrom(content),
			Kind:           entity.ConversationAI,
			CreatedBy:      userID,
			ParticipantIDs: []string{userID},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}

	sender := userID
	userMsg := &entity.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       &sender,
		Role:           entity.MessageRoleUser,
		Content:        content,
		CreatedAt:      now,
	}
	isNew := req.ConversationID == ""
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if isNew {
			if err := r.Conversations.Create(ctx, conv); err != nil {
				return err
			}
		}
		if err := r.Conversations.AddMessage(ctx, userMsg); err != nil {
			return err
		}
		return r.Conversations.Touch(ctx, conv.ID, now)
	})
	if err != nil {
		return nil, err
	}

	history, err := uc.conversations.ListMessages(ctx, conv.ID, uc.cfg.HistoryLimit)
	if err != nil {
		return nil, err
	}
	turns := make([]ports.ChatTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, ports.ChatTurn{Role: m.Role, Content: m.Content})
	}

	llmCtx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()
	start := time.Now()
	reply, err := uc.llm.Chat(llmCtx, aiSystemPrompt, turns)
	elapsed := time.Since(start)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(llmCtx.Err(), context.DeadlineExceeded):
			uc.metrics.LLMRequest(uc.llm.Name(), "timeout", elapsed)
			uc.log.Warn().Str("provider", uc.llm.Name()).Dur("elapsed", elapsed).Msg("timeout del proveedor de IA")
			return nil, context.DeadlineExceeded
		case errors.Is(err, ports.ErrLLMNotConfigured):
			uc.metrics.LLMRequest(uc.llm.Name(), "unconfigured", elapsed)
			return nil, domain.ErrUnavailable
		}
		uc.metrics.LLMRequest(uc.llm.Name(), "error", elapsed)
		uc.log.Error().Err(err).Str("provider", uc.llm.Name()).Msg("error del proveedor de IA")
		return nil, fmt.Errorf("chat IA: %w", err)
	}
	uc.metrics.LLMRequest(uc.llm.Name(), "ok", elapsed)

	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "No tengo una respuesta para eso."
	}
	replyAt := time.Now().UTC()
	assistantMsg := &entity.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Role:           entity.MessageRoleAssistant,
		Content:        reply,
		CreatedAt:      replyAt,
	}
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Conversations.AddMessage(ctx, assistantMsg); err != nil {
			return err
		}
		return r.Conversations.Touch(ctx, conv.ID, replyAt)
	})
	if err != nil {
		return nil, err
	}

	return &dto.AIChatResponse{
		ConversationID: conv.ID,
		UserMessage:    dto.NewMessageResponse(userMsg),
		Reply:          dto.NewMessageResponse(assistantMsg),
		Provider:       uc.llm.Name(),
	}, nil
}

// ListConversations conversaciones IA del usuario.
func (uc *AIUseCase) ListConversations(ctx context.Context, userID string) ([]dto.ConversationResponse, error) {
	list, err := uc.conversations.ListForUser(ctx, userID, entity.ConversationAI)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConversationResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.NewConversationResponse(c))
	}
	return out, nil
}

// Messages historial de una conversación IA del usuario.
func (uc *AIUseCase) Messages(ctx context.Context, userID, conversationID string, limit int) ([]dto.MessageResponse, error) {
	if _, err := uc.aiConversation(ctx, userID, conversationID); err != nil {
		return nil, err
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
