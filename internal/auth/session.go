package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"donaplus/internal/notify"
	"donaplus/models"
)

type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventProfileUpdated EventType = "profile_updated"
)

// Event изменение сессии, Redirect подсказывает, куда перейти после события
type Event struct {
	Type     EventType
	State    State
	Redirect string
	Profile  *models.Profile
}

type SessionOptions struct {
	DashboardPath string
	LoginPath     string
}

type SignUpInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required"`
	FullName string  `json:"fullName" validate:"required,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

// Session текущий пользователь и его профиль. Создается на запрос и закрывается через Close.
type Session struct {
	provider Provider
	profiles ProfileStore
	notifier notify.Notifier
	opts     SessionOptions

	mu       sync.RWMutex
	state    State
	identity *models.Identity
	profile  *models.Profile
	org      *models.Organization
	closed   bool

	subs        listenersOf[Event]
	unsubscribe func()
}

func NewSession(provider Provider, profiles ProfileStore, notifier notify.Notifier, opts SessionOptions) *Session {
	if opts.DashboardPath == "" {
		opts.DashboardPath = "/dashboard"
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	s := &Session{
		provider: provider,
		profiles: profiles,
		notifier: notifier,
		opts:     opts,
		state:    StateAnonymous,
	}
	s.unsubscribe = provider.OnAuthStateChange(s.onProviderEvent)
	return s
}

// onProviderEvent выход той же учетной записи в другом месте очищает сессию
func (s *Session) onProviderEvent(ev AuthEvent) {
	if ev.Type != AuthSignedOut {
		return
	}
	s.mu.Lock()
	if s.closed || s.identity == nil || s.identity.ID != ev.IdentityID {
		s.mu.Unlock()
		return
	}
	s.clearLocked()
	s.mu.Unlock()
	s.broadcast(Event{Type: EventSignedOut, State: StateAnonymous, Redirect: s.opts.LoginPath})
}

func (s *Session) clearLocked() {
	s.state = StateAnonymous
	s.identity, s.profile, s.org = nil, nil, nil
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	if !s.closed {
		s.state = st
	}
	s.mu.Unlock()
}

// attach загружает профиль и, по возможности, организацию
func (s *Session) attach(ctx context.Context, ident *models.Identity) (*models.Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	var org *models.Organization
	if profile.OrganizationID != nil {
		org, err = s.profiles.GetOrganization(ctx, *profile.OrganizationID)
		if err != nil {
			slog.WarnContext(ctx, "load organization", "organization_id", *profile.OrganizationID, "error", err)
			org = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return profile, nil
	}
	s.state = StateAuthenticated
	s.identity, s.profile, s.org = ident, profile, org
	return profile, nil
}

func (s *Session) fail(ctx context.Context, err error) *Error {
	cerr := Classify(err)
	s.mu.Lock()
	if !s.closed {
		s.clearLocked()
	}
	s.mu.Unlock()
	notify.Error(ctx, s.notifier, cerr.Message)
	return cerr
}

func (s *Session) SignIn(ctx context.Context, email, password string) (*models.Profile, error) {
	s.setState(StateAuthenticating)

	ident, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	profile, err := s.attach(ctx, ident)
	if err != nil {
		return nil, s.fail(ctx, fmt.Errorf("load profile: %w", err))
	}

	notify.Success(ctx, s.notifier, "Signed in successfully")
	s.broadcast(Event{Type: EventSignedIn, State: StateAuthenticated, Redirect: s.opts.DashboardPath, Profile: profile})
	return profile, nil
}

// SignUp создает учетную запись и профиль donor. Если профиль не сохранился,
// учетная запись остается без профиля и требует ручного вмешательства.
func (s *Session) SignUp(ctx context.Context, in SignUpInput) (*models.Profile, error) {
	s.setState(StateAuthenticating)

	ident, err := s.provider.SignUp(ctx, strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	profile := &models.Profile{
		ID:       ident.ID,
		Email:    ident.Email,
		FullName: in.FullName,
		Phone:    in.Phone,
		Role:     models.RoleDonor,
		Address:  models.JSONMap{},
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		slog.ErrorContext(ctx, "profile not created after sign-up", "identity_id", ident.ID, "error", err)
		return nil, s.fail(ctx, &Error{
			Kind:    ErrProfileNotCreated,
			Message: "Your account was created but the profile could not be saved. Please contact support",
			Err:     err,
		})
	}

	if ident.EmailConfirmedAt == nil {
		s.setState(StateAnonymous)
		notify.Success(ctx, s.notifier, "Account created. Check your email to confirm your address")
		return profile, nil
	}

	s.mu.Lock()
	if !s.closed {
		s.state = StateAuthenticated
		s.identity, s.profile, s.org = ident, profile, nil
	}
	s.mu.Unlock()

	notify.Success(ctx, s.notifier, "Account created successfully")
	s.broadcast(Event{Type: EventSignedIn, State: StateAuthenticated, Redirect: s.opts.DashboardPath, Profile: profile})
	return profile, nil
}

// SignOut локальное состояние очищается до вызова провайдера
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	var id string
	if s.identity != nil {
		id = s.identity.ID
	}
	if !s.closed {
		s.clearLocked()
	}
	s.mu.Unlock()

	if id != "" {
		if err := s.provider.SignOut(ctx, id); err != nil {
			cerr := Classify(err)
			notify.Error(ctx, s.notifier, cerr.Message)
			return cerr
		}
	}

	notify.Success(ctx, s.notifier, "Signed out")
	s.broadcast(Event{Type: EventSignedOut, State: StateAnonymous, Redirect: s.opts.LoginPath})
	return nil
}

// UpdateProfile частичное обновление профиля текущего пользователя
func (s *Session) UpdateProfile(ctx context.Context, fields models.Fields) (*models.Profile, error) {
	s.mu.RLock()
	authenticated := s.state == StateAuthenticated && s.identity != nil
	var id string
	if authenticated {
		id = s.identity.ID
	}
	s.mu.RUnlock()

	if !authenticated {
		notify.Error(ctx, s.notifier, messages[ErrUnauthenticated])
		return nil, ErrUnauthenticated
	}

	updated, err := s.profiles.UpdateProfile(ctx, id, fields)
	if err != nil {
		notify.Error(ctx, s.notifier, "Failed to update profile: "+err.Error())
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.mu.Lock()
	if !s.closed {
		s.profile = updated
	}
	s.mu.Unlock()

	notify.Success(ctx, s.notifier, "Profile updated")
	s.broadcast(Event{Type: EventProfileUpdated, State: StateAuthenticated, Profile: updated})
	return updated, nil
}

// Restore тихо восстанавливает сессию по id учетной записи из cookie.
// Неизвестная учетная запись или отсутствующий профиль оставляют сессию анонимной.
func (s *Session) Restore(ctx context.Context, identityID string) bool {
	if identityID == "" {
		return false
	}
	ident, err := s.provider.GetIdentity(ctx, identityID)
	if err != nil {
		return false
	}
	if _, err := s.attach(ctx, ident); err != nil {
		slog.DebugContext(ctx, "restore session", "identity_id", identityID, "error", err)
		return false
	}
	return true
}

// Subscribe подписка на изменения сессии
func (s *Session) Subscribe(fn func(Event)) func() {
	return s.subs.add(fn)
}

func (s *Session) broadcast(ev Event) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if !closed {
		s.subs.emit(ev)
	}
}

// Close отписывает сессию от провайдера, после него состояние не меняется
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.unsubscribe()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated && s.profile != nil
}

// IdentityID пусто для анонимной сессии
func (s *Session) IdentityID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.ID
}

func (s *Session) Profile() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Session) Organization() *models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.org == nil {
		return nil
	}
	o := *s.org
	return &o
}

// Scope права текущего пользователя, false для анонимной сессии
func (s *Session) Scope() (models.Scope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated || s.profile == nil {
		return models.Scope{}, false
	}
	sc := models.Scope{UserID: s.profile.ID, Role: s.profile.Role}
	if s.profile.OrganizationID != nil {
		sc.OrganizationID = *s.profile.OrganizationID
	}
	return sc, true
}
