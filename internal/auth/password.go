package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"donaplus/db"
	"donaplus/models"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type PasswordOptions struct {
	RequireEmailConfirmation bool
	Limiter                  AttemptLimiter // nil отключает ограничение
	BcryptCost               int
}

// PasswordProvider вход по email и паролю, учетные записи в хранилище бэкенда
type PasswordProvider struct {
	store IdentityStore
	opts  PasswordOptions
	now   func() time.Time
	listenersOf[AuthEvent]
}

func NewPasswordProvider(store IdentityStore, opts PasswordOptions) *PasswordProvider {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &PasswordProvider{store: store, opts: opts, now: time.Now}
}

func (p *PasswordProvider) SignInWithPassword(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if p.opts.Limiter != nil {
		ok, err := p.opts.Limiter.Allow(ctx, email)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ProviderError{Code: CodeRateLimited, Message: "too many sign-in attempts"}
		}
	}

	ident, err := p.store.GetIdentityByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, &ProviderError{Code: CodeInvalidCredentials, Message: "invalid login credentials"}
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(password)) != nil {
		return nil, &ProviderError{Code: CodeInvalidCredentials, Message: "invalid login credentials"}
	}
	if p.opts.RequireEmailConfirmation && ident.EmailConfirmedAt == nil {
		return nil, &ProviderError{Code: CodeEmailNotConfirmed, Message: "email not confirmed"}
	}

	if p.opts.Limiter != nil {
		if err := p.opts.Limiter.Reset(ctx, email); err != nil {
			slog.WarnContext(ctx, "reset sign-in attempts", "error", err)
		}
	}
	if err := p.store.TouchIdentity(ctx, ident.ID); err != nil {
		slog.WarnContext(ctx, "touch identity", "identity_id", ident.ID, "error", err)
	}

	p.emit(AuthEvent{Type: AuthSignedIn, IdentityID: ident.ID})
	return ident, nil
}

func (p *PasswordProvider) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	if len(password) < minPasswordLength {
		return nil, &ProviderError{Code: CodeWeakPassword, Message: "password should be at least 6 characters"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	ident := &models.Identity{Email: email, PasswordHash: string(hash)}
	if !p.opts.RequireEmailConfirmation {
		now := p.now()
		ident.EmailConfirmedAt = &now
	}
	if err := p.store.CreateIdentity(ctx, ident); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, &ProviderError{Code: CodeUserExists, Message: "user already registered"}
		}
		return nil, err
	}
	return ident, nil
}

func (p *PasswordProvider) SignOut(ctx context.Context, identityID string) error {
	p.emit(AuthEvent{Type: AuthSignedOut, IdentityID: identityID})
	return nil
}

func (p *PasswordProvider) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	return p.store.GetIdentity(ctx, id)
}

func (p *PasswordProvider) OnAuthStateChange(fn func(AuthEvent)) func() {
	return p.add(fn)
}
