package handlers

import (
	"net/http"
	"strings"

	"donaplus/internal/resources"
	"donaplus/models"
)

func (h *Handler) centers(rq request, r *http.Request) *resources.Centers {
	q := r.URL.Query()
	p := parsePaginationParams(r)
	return resources.NewCenters(h.Store, rq.env, models.CenterFilter{
		ManagerID: q.Get("managerId"),
		Status:    models.CenterStatus(q.Get("status")),
		Search:    strings.TrimSpace(q.Get("search")),
		Page:      models.Page{Limit: p.Limit, Offset: p.Offset},
	})
}

// GetCentersHandler GET /api/centers: status, managerId, search
func (h *Handler) GetCentersHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	list := h.centers(rq, r)
	if err := list.Load(r.Context()); err != nil {
		h.fail(w, r, rq, "Center", err)
		return
	}
	h.page(w, r, rq, "Center", list.Items(), list)
}

func (h *Handler) GetCenterHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	c, err := h.centers(rq, r).Get(r.Context(), urlID(r))
	if err != nil {
		h.fail(w, r, rq, "Center", err)
		return
	}
	rq.ok(w, c)
}

func (h *Handler) CreateCenterHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	var in models.CenterInput
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Center", err)
		return
	}
	c, err := h.centers(rq, r).Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, rq, "Center", err)
		return
	}
	rq.created(w, c)
}

func (h *Handler) EditCenterHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	fields, err := h.decodePatch(w, r, &models.CenterPatch{})
	if err != nil {
		h.fail(w, r, rq, "Center", err)
		return
	}
	c, err := h.centers(rq, r).Update(r.Context(), urlID(r), fields)
	if err != nil {
		h.fail(w, r, rq, "Center", err)
		return
	}
	rq.ok(w, c)
}

func (h *Handler) DeleteCenterHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	if err := h.centers(rq, r).Delete(r.Context(), urlID(r)); err != nil {
		h.fail(w, r, rq, "Center", err)
		return
	}
	rq.ok(w, nil)
}
