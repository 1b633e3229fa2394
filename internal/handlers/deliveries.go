package handlers

import (
	"net/http"
	"strings"

	"donaplus/internal/resources"
	"donaplus/models"
)

func deliveryFilter(r *http.Request) models.DeliveryFilter {
	q := r.URL.Query()
	p := parsePaginationParams(r)
	return models.DeliveryFilter{
		DonationID:    q.Get("donationId"),
		BeneficiaryID: q.Get("beneficiaryId"),
		DriverID:      q.Get("driverId"),
		Status:        models.DeliveryStatus(q.Get("status")),
		Search:        strings.TrimSpace(q.Get("search")),
		Page:          models.Page{Limit: p.Limit, Offset: p.Offset},
	}
}

func (h *Handler) deliveries(rq request, r *http.Request) *resources.Deliveries {
	return resources.NewDeliveries(h.Store, rq.env, deliveryFilter(r))
}

// GetDeliveriesHandler GET /api/deliveries: status, donationId, beneficiaryId, driverId, search
func (h *Handler) GetDeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	list := h.deliveries(rq, r)
	if err := list.Load(r.Context()); err != nil {
		h.fail(w, r, rq, "Delivery", err)
		return
	}
	h.page(w, r, rq, "Delivery", list.Items(), list)
}

func (h *Handler) GetDeliveryHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	d, err := h.deliveries(rq, r).Get(r.Context(), urlID(r))
	if err != nil {
		h.fail(w, r, rq, "Delivery", err)
		return
	}
	rq.ok(w, d)
}

// CreateDeliveryHandler POST /api/deliveries, номер отслеживания генерируется, если не задан
func (h *Handler) CreateDeliveryHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	var in models.DeliveryInput
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Delivery", err)
		return
	}
	d, err := h.deliveries(rq, r).Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, rq, "Delivery", err)
		return
	}
	rq.created(w, d)
}

func (h *Handler) EditDeliveryHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	fields, err := h.decodePatch(w, r, &models.DeliveryPatch{})
	if err != nil {
		h.fail(w, r, rq, "Delivery", err)
		return
	}
	d, err := h.deliveries(rq, r).Update(r.Context(), urlID(r), fields)
	if err != nil {
		h.fail(w, r, rq, "Delivery", err)
		return
	}
	rq.ok(w, d)
}

// deliveryStatusRequest статус и необязательные поля, которые меняются вместе с ним
type deliveryStatusRequest struct {
	Status models.DeliveryStatus `json:"status" validate:"required,oneof=pending scheduled in_transit delivered cancelled failed"`
	models.DeliveryPatch
}

// UpdateDeliveryStatusHandler PUT /api/deliveries/{id}/status
func (h *Handler) UpdateDeliveryStatusHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	var in deliveryStatusRequest
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Delivery", err)
		return
	}
	extra := models.FieldsOf(&in.DeliveryPatch)
	d, err := h.deliveries(rq, r).UpdateStatus(r.Context(), urlID(r), in.Status, extra)
	if err != nil {
		h.fail(w, r, rq, "Delivery", err)
		return
	}
	rq.ok(w, d)
}

// AdvanceDeliveryHandler POST /api/deliveries/{id}/advance, следующий статус жизненного цикла
func (h *Handler) AdvanceDeliveryHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	d, err := h.deliveries(rq, r).Advance(r.Context(), urlID(r))
	if err != nil {
		h.fail(w, r, rq, "Delivery", err)
		return
	}
	rq.ok(w, d)
}
