package resources

import (
	"context"
	"strings"

	"donaplus/db"
	"donaplus/models"
)

type ConversationStore interface {
	ListConversations(ctx context.Context, f models.ConversationFilter) ([]models.Conversation, error)
	CountConversations(ctx context.Context, f models.ConversationFilter) (int, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	CreateConversation(ctx context.Context, c *models.Conversation) error
}

type MessageStore interface {
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListMessages(ctx context.Context, f models.MessageFilter) ([]models.Message, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	CreateMessage(ctx context.Context, m *models.Message) error
	UpdateMessage(ctx context.Context, id string, fields models.Fields) (*models.Message, error)
}

// Conversations переписки, в которых участвует текущий пользователь
type Conversations struct {
	*collection[models.Conversation, models.ConversationFilter]
	store ConversationStore
}

func NewConversations(store ConversationStore, env Env, f models.ConversationFilter) *Conversations {
	return &Conversations{
		collection: newCollection("conversations", env, f, store.ListConversations,
			func(f models.ConversationFilter, s models.Scope) models.ConversationFilter {
				f.ParticipantID = s.UserID
				return f
			}).counted(store.CountConversations),
		store: store,
	}
}

func participant(c *models.Conversation, s models.Scope) bool {
	return c.ParticipantIDs.Contains(s.UserID)
}

func (r *Conversations) Get(ctx context.Context, id string) (*models.Conversation, error) {
	return get(ctx, r.collection, id, r.store.GetConversation, participant)
}

// Start создает переписку, текущий пользователь всегда среди участников
func (r *Conversations) Start(ctx context.Context, in models.ConversationInput) (*models.Conversation, error) {
	m := opCreate.messages("Conversation started", "Failed to start conversation")
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Conversation, string, error) {
		ids := models.StringList{sc.UserID}
		for _, id := range in.ParticipantIDs {
			if id = strings.TrimSpace(id); id != "" && !ids.Contains(id) {
				ids = append(ids, id)
			}
		}
		c := &models.Conversation{ParticipantIDs: ids, DonationID: in.DonationID, DeliveryID: in.DeliveryID}
		if sc.OrganizationID != "" {
			org := sc.OrganizationID
			c.OrganizationID = &org
		}
		if err := r.store.CreateConversation(ctx, c); err != nil {
			return nil, "", err
		}
		return c, c.ID, nil
	})
}

// Messages сообщения одной переписки, от старых к новым
type Messages struct {
	*collection[models.Message, models.MessageFilter]
	store MessageStore
}

func NewMessages(store MessageStore, env Env, conversationID string) *Messages {
	r := &Messages{store: store}
	r.collection = newCollection("messages", env, models.MessageFilter{ConversationID: conversationID}, r.listMessages,
		func(f models.MessageFilter, _ models.Scope) models.MessageFilter { return f })
	r.collection.audience = r.participants
	return r
}

// participants событие о сообщении видят участники переписки
func (r *Messages) participants(ctx context.Context, row any) (string, []string) {
	msg, ok := row.(*models.Message)
	if !ok {
		return "", nil
	}
	c, err := r.store.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		return "", nil
	}
	return "", c.ParticipantIDs
}

// listMessages перед чтением проверяет участие пользователя в переписке
func (r *Messages) listMessages(ctx context.Context, f models.MessageFilter) ([]models.Message, error) {
	sc, _ := r.env.scope()
	if err := ensureVisible(ctx, sc, f.ConversationID, r.store.GetConversation, participant); err != nil {
		return nil, err
	}
	return r.store.ListMessages(ctx, f)
}

func (r *Messages) Send(ctx context.Context, in models.MessageInput) (*models.Message, error) {
	m := opCreate.messages("Message sent", "Failed to send message")
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Message, string, error) {
		convID := r.Filter().ConversationID
		if err := ensureVisible(ctx, sc, convID, r.store.GetConversation, participant); err != nil {
			return nil, "", err
		}
		msg := &models.Message{
			ConversationID: convID,
			SenderID:       sc.UserID,
			Content:        in.Content,
			Attachments:    models.StringList(in.Attachments),
		}
		if msg.Attachments == nil {
			msg.Attachments = models.StringList{}
		}
		if err := r.store.CreateMessage(ctx, msg); err != nil {
			return nil, "", err
		}
		return msg, msg.ID, nil
	})
}

// Edit менять текст может только автор
func (r *Messages) Edit(ctx context.Context, id, content string) (*models.Message, error) {
	m := opUpdate.messages("Message updated", "Failed to update message")
	return r.update(ctx, id, m, func(msg *models.Message, s models.Scope) bool { return msg.SenderID == s.UserID },
		models.Fields{"content": content, "is_edited": true})
}

// MarkRead отмечает сообщение прочитанным, доступно любому участнику
func (r *Messages) MarkRead(ctx context.Context, id string) (*models.Message, error) {
	m := opUpdate.messages("Message marked as read", "Failed to update message")
	return r.update(ctx, id, m, func(*models.Message, models.Scope) bool { return true },
		models.Fields{"is_read": true})
}

func (r *Messages) update(ctx context.Context, id string, m mutation,
	allowed func(*models.Message, models.Scope) bool, fields models.Fields,
) (*models.Message, error) {
	return mutate(ctx, r.collection, m, func(ctx context.Context, sc models.Scope) (*models.Message, string, error) {
		msg, err := r.store.GetMessage(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if msg.ConversationID != r.Filter().ConversationID || !allowed(msg, sc) {
			return nil, "", db.ErrNotFound
		}
		if err := ensureVisible(ctx, sc, msg.ConversationID, r.store.GetConversation, participant); err != nil {
			return nil, "", err
		}
		out, err := r.store.UpdateMessage(ctx, id, fields)
		if err != nil {
			return nil, "", err
		}
		return out, out.ID, nil
	})
}
