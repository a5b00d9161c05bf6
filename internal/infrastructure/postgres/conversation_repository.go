package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

var _ repository.ConversationRepository = (*ConversationRepo)(nil)

// ConversationRepo conversaciones y mensajes sobre PostgreSQL.
type ConversationRepo struct {
	q Querier
}

// NewConversationRepository construye el adaptador (pool o tx).
func NewConversationRepository(q Querier) *ConversationRepo {
	return &ConversationRepo{q: q}
}

// Create inserta la conversación y un participante por cada ParticipantIDs.
// Debe ejecutarse dentro de una transacción para que sea atómico.
func (r *ConversationRepo) Create(ctx context.Context, c *entity.Conversation) error {
	query := `
		INSERT INTO conversations (id, title, kind, created_by, last_message_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, c.ID, c.Title, c.Kind, nullable(c.CreatedBy), c.LastMessageAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("kind", "tipo de conversación inválido")
		}
		return fmt.Errorf("insert conversation: %w", err)
	}
	for _, userID := range c.ParticipantIDs {
		_, err := r.q.Exec(ctx, `
			INSERT INTO conversation_participants (conversation_id, user_id, joined_at)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, c.ID, userID, c.CreatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.Invalid("participant_ids", "usuario inexistente: "+userID)
			}
			return fmt.Errorf("insert participant: %w", err)
		}
	}
	return nil
}

func (r *ConversationRepo) participants(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT user_id FROM conversation_participants WHERE conversation_id = $1 ORDER BY joined_at, user_id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetByID obtiene la conversación con sus participantes.
func (r *ConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	var (
		c         entity.Conversation
		createdBy *string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, title, kind, created_by, last_message_at, created_at, updated_at
		FROM conversations WHERE id = $1`, id).Scan(
		&c.ID, &c.Title, &c.Kind, &createdBy, &c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	c.CreatedBy = deref(createdBy)
	if c.ParticipantIDs, err = r.participants(ctx, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForUser conversaciones del usuario, la de actividad más reciente primero.
// kind vacío = todos los tipos.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID, kind string) ([]*entity.Conversation, error) {
	query := `
		SELECT c.id, c.title, c.kind, c.created_by, c.last_message_at, c.created_at, c.updated_at
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = $1 AND ($2 = '' OR c.kind = $2)
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC`
	rows, err := r.q.Query(ctx, query, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Conversation
	for rows.Next() {
		var (
			c         entity.Conversation
			createdBy *string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Kind, &createdBy, &c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.CreatedBy = deref(createdBy)
		list = append(list, &c)
	}
	return list, rows.Err()
}

// IsParticipant indica si el usuario pertenece a la conversación.
func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2)`,
		conversationID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return ok, nil
}

// AddMessage persiste un mensaje.
func (r *ConversationRepo) AddMessage(ctx context.Context, m *entity.Message) error {
	query := `
		INSERT INTO chat_messages (id, conversation_id, sender_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, m.ID, m.ConversationID, m.SenderID, m.Role, m.Content, m.CreatedAt)
	if err != nil {
		switch {
		case isCheckViolation(err):
			return domain.Invalid("content", "el mensaje no puede estar vacío")
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListMessages últimos `limit` mensajes en orden cronológico.
func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error) {
	limit, _ = paginate(limit, 0)
	query := `
		SELECT id, conversation_id, sender_id, role, content, created_at FROM (
			SELECT id, conversation_id, sender_id, role, content, created_at
			FROM chat_messages WHERE conversation_id = $1
			ORDER BY created_at DESC, id DESC LIMIT $2
		) m ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	var list []*entity.Message
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Touch marca la actividad más reciente de la conversación.
func (r *ConversationRepo) Touch(ctx context.Context, conversationID string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE conversations SET last_message_at = $2, updated_at = $2 WHERE id = $1`, conversationID, at)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
