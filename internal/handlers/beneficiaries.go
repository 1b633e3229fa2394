package handlers

import (
	"net/http"
	"strings"

	"donaplus/internal/resources"
	"donaplus/models"
)

func (h *Handler) beneficiaries(rq request, r *http.Request) *resources.Beneficiaries {
	q := r.URL.Query()
	p := parsePaginationParams(r)
	return resources.NewBeneficiaries(h.Store, rq.env, models.ProfileFilter{
		Verified: models.ParseBoolFilter(q.Get("verified")),
		Search:   strings.TrimSpace(q.Get("search")),
		Page:     models.Page{Limit: p.Limit, Offset: p.Offset},
	})
}

// GetBeneficiariesHandler GET /api/beneficiaries: verified, search
func (h *Handler) GetBeneficiariesHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	list := h.beneficiaries(rq, r)
	if err := list.Load(r.Context()); err != nil {
		h.fail(w, r, rq, "Beneficiary", err)
		return
	}
	h.page(w, r, rq, "Beneficiary", list.Items(), list)
}

func (h *Handler) GetBeneficiaryHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	p, err := h.beneficiaries(rq, r).Get(r.Context(), urlID(r))
	if err != nil {
		h.fail(w, r, rq, "Beneficiary", err)
		return
	}
	rq.ok(w, p)
}

func (h *Handler) CreateBeneficiaryHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	var in models.BeneficiaryInput
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Beneficiary", err)
		return
	}
	p, err := h.beneficiaries(rq, r).Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, rq, "Beneficiary", err)
		return
	}
	rq.created(w, p)
}

func (h *Handler) EditBeneficiaryHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	fields, err := h.decodePatch(w, r, &models.ProfilePatch{})
	if err != nil {
		h.fail(w, r, rq, "Beneficiary", err)
		return
	}
	p, err := h.beneficiaries(rq, r).Update(r.Context(), urlID(r), fields)
	if err != nil {
		h.fail(w, r, rq, "Beneficiary", err)
		return
	}
	rq.ok(w, p)
}

// VerifyBeneficiaryHandler POST /api/beneficiaries/{id}/verify, ?verified=false снимает отметку
func (h *Handler) VerifyBeneficiaryHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	list := h.beneficiaries(rq, r)

	var (
		p   *models.Profile
		err error
	)
	if models.ParseBoolFilter(r.URL.Query().Get("verified")) == models.OnlyFalse {
		p, err = list.Unverify(r.Context(), urlID(r))
	} else {
		p, err = list.Verify(r.Context(), urlID(r))
	}
	if err != nil {
		h.fail(w, r, rq, "Beneficiary", err)
		return
	}
	rq.ok(w, p)
}
