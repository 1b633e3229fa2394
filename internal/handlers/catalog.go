package handlers

import (
	"net/http"

	"donaplus/internal/auth"
	"donaplus/internal/pkg/response"
	"donaplus/internal/realtime"
	"donaplus/internal/resources"

	"github.com/go-chi/chi/v5"
)

// realtimeTables таблицы, на изменения которых можно подписаться
var realtimeTables = map[string]bool{
	"donations":     true,
	"centers":       true,
	"deliveries":    true,
	"beneficiaries": true,
	"conversations": true,
	"messages":      true,
}

// GetCategoriesHandler GET /api/categories, только активные
func (h *Handler) GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	list := resources.NewCategories(h.Store, rq.env)
	if err := list.Load(r.Context()); err != nil {
		h.fail(w, r, rq, "Category", err)
		return
	}
	items := list.Items()
	rq.list(w, items, len(items), PaginationParams{})
}

// GetStatsHandler GET /api/stats, счетчики в пределах прав пользователя
func (h *Handler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	stats := resources.NewStats(h.Store, rq.env)
	if err := stats.Load(r.Context()); err != nil {
		h.fail(w, r, rq, "Stats", err)
		return
	}
	rq.ok(w, stats.Value())
}

// RealtimeHandler GET /api/realtime/{table}, поток SSE
func (h *Handler) RealtimeHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	if rq.session == nil || !rq.session.Authenticated() {
		h.fail(w, r, rq, "Realtime", auth.ErrUnauthenticated)
		return
	}
	table := chi.URLParam(r, "table")
	if !realtimeTables[table] {
		response.NotFound(w, "Table")
		return
	}
	if h.Hub == nil {
		response.Unavailable(w)
		return
	}
	sc, _ := rq.session.Scope()
	h.Hub.ServeSSE(w, r, table, func(c realtime.Change) bool { return resources.ChangeVisible(c, sc) })
}
