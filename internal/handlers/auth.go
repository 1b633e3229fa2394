package handlers

import (
	"net/http"

	"donaplus/internal/auth"
	apierrors "donaplus/internal/pkg/errors"
	"donaplus/internal/resources"
	"donaplus/models"
)

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// authResult ответ входа, регистрации и выхода: куда перейти клиенту
type authResult struct {
	Profile  *models.Profile `json:"profile,omitempty"`
	State    auth.State      `json:"state"`
	Redirect string          `json:"redirect,omitempty"`
}

type dashboard struct {
	Profile      *models.Profile      `json:"profile"`
	Organization *models.Organization `json:"organization,omitempty"`
	Stats        models.Stats         `json:"stats"`
}

var errNoSession = apierrors.ErrInternal.WithMessage("Session is not available")

// redirectOf запоминает подсказку перехода из событий сессии
func redirectOf(s *auth.Session) (*string, func()) {
	var redirect string
	unsubscribe := s.Subscribe(func(ev auth.Event) { redirect = ev.Redirect })
	return &redirect, unsubscribe
}

// SignInHandler POST /login
func (h *Handler) SignInHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	if rq.session == nil {
		h.fail(w, r, rq, "Session", errNoSession)
		return
	}
	var in signInRequest
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Session", err)
		return
	}

	redirect, unsubscribe := redirectOf(rq.session)
	defer unsubscribe()

	p, err := rq.session.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(w, r, rq, "Session", err)
		return
	}
	rq.ok(w, authResult{Profile: p, State: rq.session.State(), Redirect: *redirect})
}

// SignUpHandler POST /signup, без подтверждения email сессия остается анонимной
func (h *Handler) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	if rq.session == nil {
		h.fail(w, r, rq, "Session", errNoSession)
		return
	}
	var in auth.SignUpInput
	if err := h.decode(w, r, &in); err != nil {
		h.fail(w, r, rq, "Session", err)
		return
	}

	redirect, unsubscribe := redirectOf(rq.session)
	defer unsubscribe()

	p, err := rq.session.SignUp(r.Context(), in)
	if err != nil {
		h.fail(w, r, rq, "Session", err)
		return
	}
	rq.created(w, authResult{Profile: p, State: rq.session.State(), Redirect: *redirect})
}

// SignOutHandler POST /logout
func (h *Handler) SignOutHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	if rq.session == nil {
		h.fail(w, r, rq, "Session", errNoSession)
		return
	}
	redirect, unsubscribe := redirectOf(rq.session)
	defer unsubscribe()

	if err := rq.session.SignOut(r.Context()); err != nil {
		h.fail(w, r, rq, "Session", err)
		return
	}
	rq.ok(w, authResult{State: rq.session.State(), Redirect: *redirect})
}

// DashboardHandler GET /dashboard: профиль, организация и счетчики
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	if rq.session == nil || !rq.session.Authenticated() {
		h.fail(w, r, rq, "Profile", auth.ErrUnauthenticated)
		return
	}
	stats := resources.NewStats(h.Store, rq.env)
	if err := stats.Load(r.Context()); err != nil {
		h.fail(w, r, rq, "Stats", err)
		return
	}
	rq.ok(w, dashboard{
		Profile:      rq.session.Profile(),
		Organization: rq.session.Organization(),
		Stats:        stats.Value(),
	})
}

// GetProfileHandler GET /api/profile
func (h *Handler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	if rq.session == nil || !rq.session.Authenticated() {
		h.fail(w, r, rq, "Profile", auth.ErrUnauthenticated)
		return
	}
	rq.ok(w, rq.session.Profile())
}

// UpdateProfileHandler PATCH /api/profile
func (h *Handler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	rq := h.begin(r)
	if rq.session == nil {
		h.fail(w, r, rq, "Profile", auth.ErrUnauthenticated)
		return
	}
	fields, err := h.decodePatch(w, r, &models.ProfilePatch{})
	if err != nil {
		h.fail(w, r, rq, "Profile", err)
		return
	}
	p, err := rq.session.UpdateProfile(r.Context(), fields)
	if err != nil {
		h.fail(w, r, rq, "Profile", err)
		return
	}
	rq.ok(w, p)
}
