package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"donaplus/models"
)

const defaultTokenTTL = 24 * time.Hour

// TokenStore серверные записи входа, cookie без записи не аутентифицирует
type TokenStore interface {
	CreateAuthSession(ctx context.Context, a *models.AuthSession) error
	GetAuthSession(ctx context.Context, token string) (*models.AuthSession, error)
	ExtendAuthSession(ctx context.Context, token string, expiresAt time.Time) error
	DeleteAuthSession(ctx context.Context, token string) error
	DeleteAuthSessions(ctx context.Context, identityID string) error
}

// Tokens выдает, продлевает и отзывает токены сессий
type Tokens struct {
	store TokenStore
	ttl   time.Duration
	now   func() time.Time
}

func NewTokens(store TokenStore, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Tokens{store: store, ttl: ttl, now: time.Now}
}

// Issue новый случайный токен для учетной записи
func (t *Tokens) Issue(ctx context.Context, identityID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(b)
	a := &models.AuthSession{Token: token, IdentityID: identityID, ExpiresAt: t.now().Add(t.ttl)}
	if err := t.store.CreateAuthSession(ctx, a); err != nil {
		return "", fmt.Errorf("store session token: %w", err)
	}
	return token, nil
}

// Resolve id учетной записи по действующему токену
func (t *Tokens) Resolve(ctx context.Context, token string) (string, error) {
	a, err := t.store.GetAuthSession(ctx, token)
	if err != nil {
		return "", err
	}
	return a.IdentityID, nil
}

func (t *Tokens) Extend(ctx context.Context, token string) error {
	return t.store.ExtendAuthSession(ctx, token, t.now().Add(t.ttl))
}

func (t *Tokens) Revoke(ctx context.Context, token string) error {
	return t.store.DeleteAuthSession(ctx, token)
}

// RevokeAll выход на всех устройствах
func (t *Tokens) RevokeAll(ctx context.Context, identityID string) error {
	return t.store.DeleteAuthSessions(ctx, identityID)
}
