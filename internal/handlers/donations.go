package handlers

import (
	"net/http"
	"strings"

	"donaplus/internal/resources"
	"donaplus/models"
)

func donationFilter(r *http.Request) models.DonationFilter {
	q := r.URL.Query()
	p := parsePaginationParams(r)
	return models.DonationFilter{
		CategoryID: q.Get("categoryId"),
		CenterID:   q.Get("centerId"),
		Status:     models.DonationStatus(q.Get("status")),
		Urgent:     models.ParseBoolFilter(q.Get("urgent")),
		Search:     strings.TrimSpace(q.Get("search")),
		Page:       models.Page{Limit: p.Limit, Offset: p.Offset},
	}
}

func (h *Handler) donations(rq request, r *http.Request) *resources.Donations {
	return resources.NewDonations(h.Store, rq.env, donationFilter(r))
}

// GetDonationsHandler GET /api/donations: status, categoryId, centerId, urgent, search, limit, offset
func (h *Handler) GetDonationsHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	list := h.donations(rq, r)
	if err := list.Load(r.Context()); err != nil {
		h.fail(w, r, rq, "Donation", err)
		return
	}
	h.page(w, r, rq, "Donation", list.Items(), list)
}

func (h *Handler) GetDonationHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	d, err := h.donations(rq, r).Get(r.Context(), urlID(r))
	if err != nil {
		h.fail(w, r, rq, "Donation", err)
		return
	}
	rq.ok(w, d)
}

// CreateDonationHandler POST /api/donations, организация и донор берутся из сессии, если не заданы
func (h *Handler) CreateDonationHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	var in models.DonationInput
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Donation", err)
		return
	}
	d, err := h.donations(rq, r).Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, rq, "Donation", err)
		return
	}
	rq.created(w, d)
}

func (h *Handler) EditDonationHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	fields, err := h.decodePatch(w, r, &models.DonationPatch{})
	if err != nil {
		h.fail(w, r, rq, "Donation", err)
		return
	}
	d, err := h.donations(rq, r).Update(r.Context(), urlID(r), fields)
	if err != nil {
		h.fail(w, r, rq, "Donation", err)
		return
	}
	rq.ok(w, d)
}

type donationStatusRequest struct {
	Status models.DonationStatus `json:"status" validate:"required,oneof=pending published claimed in_transit delivered cancelled"`
}

// UpdateDonationStatusHandler PUT /api/donations/{id}/status, переход статуса не проверяется
func (h *Handler) UpdateDonationStatusHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	var in donationStatusRequest
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Donation", err)
		return
	}
	d, err := h.donations(rq, r).SetStatus(r.Context(), urlID(r), in.Status)
	if err != nil {
		h.fail(w, r, rq, "Donation", err)
		return
	}
	rq.ok(w, d)
}

func (h *Handler) DeleteDonationHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	if err := h.donations(rq, r).Delete(r.Context(), urlID(r)); err != nil {
		h.fail(w, r, rq, "Donation", err)
		return
	}
	rq.ok(w, nil)
}
