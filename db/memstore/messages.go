package memstore

import (
	"context"
	"fmt"
	"time"

	"donaplus/db"
	"donaplus/models"
)

func (s *Store) CreateConversation(ctx context.Context, c *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = newID(c.ID)
	if c.ParticipantIDs == nil {
		c.ParticipantIDs = models.StringList{}
	}
	c.LastMessageAt = nil
	c.CreatedAt = s.now()
	s.conversations.insert(c.ID, *c)
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations.get(id)
	if !ok {
		return nil, db.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListConversations(ctx context.Context, f models.ConversationFilter) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lastActivity := func(c models.Conversation) time.Time {
		if c.LastMessageAt != nil {
			return *c.LastMessageAt
		}
		return c.CreatedAt
	}
	return s.conversations.list(conversationMatch(f), lastActivity, true, f.Page), nil
}

func (s *Store) CountConversations(ctx context.Context, f models.ConversationFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversations.count(conversationMatch(f)), nil
}

func conversationMatch(f models.ConversationFilter) func(models.Conversation) bool {
	return func(c models.Conversation) bool {
		return (f.ParticipantID == "" || c.ParticipantIDs.Contains(f.ParticipantID)) &&
			eqPtr(f.DonationID, c.DonationID) &&
			eqPtr(f.DeliveryID, c.DeliveryID)
	}
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations.rows[m.ConversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", m.ConversationID, db.ErrNotFound)
	}
	m.ID = newID(m.ID)
	if m.Attachments == nil {
		m.Attachments = models.StringList{}
	}
	m.IsRead, m.IsEdited = false, false
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	s.messages.insert(m.ID, *m)

	at := m.CreatedAt
	conv.v.LastMessageAt = &at
	return nil
}

func (s *Store) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages.get(id)
	if !ok {
		return nil, db.ErrNotFound
	}
	return &m, nil
}

func (s *Store) UpdateMessage(ctx context.Context, id string, fields models.Fields) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.messages.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	m := r.v
	if err := applyFields("messages", &m, fields); err != nil {
		return nil, err
	}
	m.UpdatedAt = s.now()
	r.v = m
	return &m, nil
}

func (s *Store) ListMessages(ctx context.Context, f models.MessageFilter) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keep := func(m models.Message) bool { return eq(f.ConversationID, m.ConversationID) }
	return s.messages.list(keep, func(m models.Message) time.Time { return m.CreatedAt }, false, f.Page), nil
}
