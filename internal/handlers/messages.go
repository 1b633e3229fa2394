package handlers

import (
	"net/http"

	"donaplus/internal/auth"
	"donaplus/internal/resources"
	"donaplus/models"
)

func (h *Handler) conversations(rq request, r *http.Request) *resources.Conversations {
	q := r.URL.Query()
	p := parsePaginationParams(r)
	return resources.NewConversations(h.Store, rq.env, models.ConversationFilter{
		DonationID: q.Get("donationId"),
		DeliveryID: q.Get("deliveryId"),
		Page:       models.Page{Limit: p.Limit, Offset: p.Offset},
	})
}

// GetConversationsHandler GET /api/conversations, только переписки текущего пользователя
func (h *Handler) GetConversationsHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	list := h.conversations(rq, r)
	if err := list.Load(r.Context()); err != nil {
		h.fail(w, r, rq, "Conversation", err)
		return
	}
	h.page(w, r, rq, "Conversation", list.Items(), list)
}

func (h *Handler) StartConversationHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	var in models.ConversationInput
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Conversation", err)
		return
	}
	c, err := h.conversations(rq, r).Start(r.Context(), in)
	if err != nil {
		h.fail(w, r, rq, "Conversation", err)
		return
	}
	rq.created(w, c)
}

// GetMessagesHandler GET /api/conversations/{id}/messages
func (h *Handler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	list := resources.NewMessages(h.Store, rq.env, urlID(r))
	if err := list.Load(r.Context()); err != nil {
		h.fail(w, r, rq, "Conversation", err)
		return
	}
	items := list.Items()
	rq.list(w, items, len(items), PaginationParams{})
}

// SendMessageHandler POST /api/conversations/{id}/messages
func (h *Handler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	var in models.MessageInput
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Conversation", err)
		return
	}
	msg, err := resources.NewMessages(h.Store, rq.env, urlID(r)).Send(r.Context(), in)
	if err != nil {
		h.fail(w, r, rq, "Conversation", err)
		return
	}
	rq.created(w, msg)
}

// messagesOf коллекция переписки, которой принадлежит сообщение {id}
func (h *Handler) messagesOf(rq request, r *http.Request) (*resources.Messages, error) {
	if rq.session == nil || !rq.session.Authenticated() {
		return nil, auth.ErrUnauthenticated
	}
	msg, err := h.Store.GetMessage(r.Context(), urlID(r))
	if err != nil {
		return nil, err
	}
	return resources.NewMessages(h.Store, rq.env, msg.ConversationID), nil
}

type editMessageRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// EditMessageHandler PATCH /api/messages/{id}, только автор сообщения
func (h *Handler) EditMessageHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	var in editMessageRequest
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Message", err)
		return
	}
	list, err := h.messagesOf(rq, r)
	if err != nil {
		h.fail(w, r, rq, "Message", err)
		return
	}
	msg, err := list.Edit(r.Context(), urlID(r), in.Content)
	if err != nil {
		h.fail(w, r, rq, "Message", err)
		return
	}
	rq.ok(w, msg)
}

// MarkMessageReadHandler POST /api/messages/{id}/read
func (h *Handler) MarkMessageReadHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	list, err := h.messagesOf(rq, r)
	if err != nil {
		h.fail(w, r, rq, "Message", err)
		return
	}
	msg, err := list.MarkRead(r.Context(), urlID(r))
	if err != nil {
		h.fail(w, r, rq, "Message", err)
		return
	}
	rq.ok(w, msg)
}
