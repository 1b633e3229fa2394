package db

import (
	"context"
	"encoding/json"
	"fmt"

	"donaplus/models"

	"github.com/google/uuid"
)

// Conversation (Переписка)

const conversationSelect = `
    SELECT id, organization_id, participant_ids, donation_id, delivery_id, last_message_at, created_at
    FROM conversations`

func (s *Storage) CreateConversation(ctx context.Context, c *models.Conversation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
        INSERT INTO conversations (id, organization_id, participant_ids, donation_id, delivery_id)
        VALUES (?, ?, ?, ?, ?)
        RETURNING created_at`
	return s.db.QueryRowContext(ctx, s.db.Rebind(query),
		c.ID, c.OrganizationID, c.ParticipantIDs, c.DonationID, c.DeliveryID,
	).Scan(&c.CreatedAt)
}

func (s *Storage) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	c := &models.Conversation{}
	if err := s.getRow(ctx, c, conversationSelect, "id", id); err != nil {
		return nil, err
	}
	return c, nil
}

func conversationWhere(f models.ConversationFilter) (*where, error) {
	w := &where{}
	if f.ParticipantID != "" {
		contains, err := json.Marshal([]string{f.ParticipantID})
		if err != nil {
			return nil, fmt.Errorf("participant filter: %w", err)
		}
		w.add("participant_ids @> ?::jsonb", string(contains))
	}
	w.eq("donation_id", f.DonationID)
	w.eq("delivery_id", f.DeliveryID)
	return w, nil
}

func (s *Storage) ListConversations(ctx context.Context, f models.ConversationFilter) ([]models.Conversation, error) {
	w, err := conversationWhere(f)
	if err != nil {
		return nil, err
	}
	out := []models.Conversation{}
	if err := s.selectRows(ctx, &out, conversationSelect, w, "COALESCE(last_message_at, created_at) DESC", f.Page); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) CountConversations(ctx context.Context, f models.ConversationFilter) (int, error) {
	w, err := conversationWhere(f)
	if err != nil {
		return 0, err
	}
	return s.count(ctx, `SELECT COUNT(*) FROM conversations`, w)
}

// Message (Сообщение)

var messageColumns = columnSet("content", "attachments", "is_read", "is_edited")

const messageSelect = `
    SELECT id, conversation_id, sender_id, content, attachments, is_read, is_edited, created_at, updated_at
    FROM messages`

// CreateMessage вставляет сообщение и сдвигает last_message_at переписки в одной транзакции
func (s *Storage) CreateMessage(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE conversations SET last_message_at = NOW() WHERE id = ?`), m.ConversationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s: %w", m.ConversationID, ErrNotFound)
	}

	query := `
        INSERT INTO messages (id, conversation_id, sender_id, content, attachments)
        VALUES (?, ?, ?, ?, ?)
        RETURNING is_read, is_edited, created_at, updated_at`
	err = tx.QueryRowContext(ctx, tx.Rebind(query), m.ID, m.ConversationID, m.SenderID, m.Content, m.Attachments).
		Scan(&m.IsRead, &m.IsEdited, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Storage) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	m := &models.Message{}
	if err := s.getRow(ctx, m, messageSelect, "id", id); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Storage) UpdateMessage(ctx context.Context, id string, fields models.Fields) (*models.Message, error) {
	if err := s.update(ctx, "messages", id, fields); err != nil {
		return nil, err
	}
	return s.GetMessage(ctx, id)
}

func (s *Storage) ListMessages(ctx context.Context, f models.MessageFilter) ([]models.Message, error) {
	w := &where{}
	w.eq("conversation_id", f.ConversationID)
	out := []models.Message{}
	if err := s.selectRows(ctx, &out, messageSelect, w, "created_at ASC", f.Page); err != nil {
		return nil, err
	}
	return out, nil
}
