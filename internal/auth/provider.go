// Package auth провайдеры аутентификации и контекст сессии пользователя.
package auth

import (
	"context"
	"fmt"
	"sync"

	"donaplus/models"
)

// IdentityStore учетные записи в хранилище бэкенда
type IdentityStore interface {
	CreateIdentity(ctx context.Context, i *models.Identity) error
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error)
	TouchIdentity(ctx context.Context, id string) error
}

// ProfileStore профили и организации, нужные сессии
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, fields models.Fields) (*models.Profile, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
}

type AuthEventType string

const (
	AuthSignedIn  AuthEventType = "SIGNED_IN"
	AuthSignedOut AuthEventType = "SIGNED_OUT"
)

// AuthEvent изменение состояния на стороне провайдера
type AuthEvent struct {
	Type       AuthEventType
	IdentityID string
}

type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*models.Identity, error)
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut(ctx context.Context, identityID string) error
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())
}

// Коды ошибок провайдера
const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailNotConfirmed  = "email_not_confirmed"
	CodeRateLimited        = "over_request_rate_limit"
	CodeUserExists         = "user_already_exists"
	CodeWeakPassword       = "weak_password"
	CodeSignupDisabled     = "signup_disabled"
)

// ProviderError ошибка провайдера с машинным кодом
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// listenersOf подписчики событий провайдера или сессии
type listenersOf[E any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(E)
}

func (l *listenersOf[E]) add(fn func(E)) func() {
	l.mu.Lock()
	if l.fns == nil {
		l.fns = make(map[int]func(E))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// emit вызывает подписчиков вне блокировки
func (l *listenersOf[E]) emit(ev E) {
	l.mu.Lock()
	fns := make([]func(E), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (l *listenersOf[E]) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
