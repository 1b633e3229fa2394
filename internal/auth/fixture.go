package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"donaplus/db"
	"donaplus/internal/config"
	"donaplus/models"

	"github.com/google/uuid"
)

// FixtureStore хранилище, в которое фикстурный провайдер кладет свою учетную запись
type FixtureStore interface {
	IdentityStore
	ProfileStore
	CreateOrganization(ctx context.Context, o *models.Organization) error
}

type FixtureOptions struct {
	Email        string
	FullName     string
	Role         models.Role
	Organization string // имя организации, пусто для пользователя без организации
}

// FixtureProvider единственная заранее известная учетная запись для разработки и тестов.
// Пароль не проверяется, поэтому провайдер запрещен в production (см. NewProvider).
type FixtureProvider struct {
	identity models.Identity
	listenersOf[AuthEvent]
}

// NewFixtureProvider создает учетную запись, профиль и организацию, если их еще нет.
// Идентификаторы детерминированы от email и имени организации.
func NewFixtureProvider(ctx context.Context, store FixtureStore, opts FixtureOptions) (*FixtureProvider, error) {
	opts.Email = strings.ToLower(strings.TrimSpace(opts.Email))
	if opts.Email == "" {
		return nil, errors.New("fixture email is required")
	}
	if !opts.Role.Valid() {
		return nil, fmt.Errorf("invalid fixture role %q", opts.Role)
	}
	if opts.FullName == "" {
		opts.FullName = "Demo User"
	}

	var orgID *string
	if opts.Organization != "" {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("donaplus:org:"+opts.Organization)).String()
		if _, err := store.GetOrganization(ctx, id); errors.Is(err, db.ErrNotFound) {
			org := &models.Organization{ID: id, Name: opts.Organization}
			if err := store.CreateOrganization(ctx, org); err != nil {
				return nil, fmt.Errorf("seed fixture organization: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("get fixture organization: %w", err)
		}
		orgID = &id
	}

	identID := uuid.NewSHA1(uuid.NameSpaceURL, []byte("donaplus:identity:"+opts.Email)).String()
	ident, err := store.GetIdentity(ctx, identID)
	if errors.Is(err, db.ErrNotFound) {
		now := time.Now()
		ident = &models.Identity{ID: identID, Email: opts.Email, EmailConfirmedAt: &now}
		if err := store.CreateIdentity(ctx, ident); err != nil {
			return nil, fmt.Errorf("seed fixture identity: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("get fixture identity: %w", err)
	}

	if _, err := store.GetProfile(ctx, identID); errors.Is(err, db.ErrNotFound) {
		now := time.Now()
		p := &models.Profile{
			ID:             identID,
			Email:          opts.Email,
			FullName:       opts.FullName,
			Role:           opts.Role,
			OrganizationID: orgID,
			IsVerified:     true,
			VerifiedAt:     &now,
			Address:        models.JSONMap{},
		}
		if err := store.CreateProfile(ctx, p); err != nil {
			return nil, fmt.Errorf("seed fixture profile: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("get fixture profile: %w", err)
	}

	return &FixtureProvider{identity: *ident}, nil
}

// Identity фикстурная учетная запись
func (p *FixtureProvider) Identity() models.Identity {
	return p.identity
}

func (p *FixtureProvider) SignInWithPassword(ctx context.Context, email, _ string) (*models.Identity, error) {
	if strings.ToLower(strings.TrimSpace(email)) != p.identity.Email {
		return nil, &ProviderError{Code: CodeInvalidCredentials, Message: "invalid login credentials"}
	}
	ident := p.identity
	p.emit(AuthEvent{Type: AuthSignedIn, IdentityID: ident.ID})
	return &ident, nil
}

func (p *FixtureProvider) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	return nil, &ProviderError{Code: CodeSignupDisabled, Message: "sign-up is disabled for the fixture provider"}
}

func (p *FixtureProvider) SignOut(ctx context.Context, identityID string) error {
	p.emit(AuthEvent{Type: AuthSignedOut, IdentityID: identityID})
	return nil
}

func (p *FixtureProvider) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	if id != p.identity.ID {
		return nil, db.ErrNotFound
	}
	ident := p.identity
	return &ident, nil
}

func (p *FixtureProvider) OnAuthStateChange(fn func(AuthEvent)) func() {
	return p.add(fn)
}

// NewProvider выбирает провайдер по конфигурации
func NewProvider(ctx context.Context, cfg config.AuthConfig, production bool, store FixtureStore, limiter AttemptLimiter) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderFixture:
		if production {
			return nil, config.ErrFixtureInProduction
		}
		p, err := NewFixtureProvider(ctx, store, FixtureOptions{
			Email:        cfg.FixtureEmail,
			Role:         models.Role(cfg.FixtureRole),
			Organization: cfg.FixtureOrg,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderPassword, "":
		return NewPasswordProvider(store, PasswordOptions{
			RequireEmailConfirmation: cfg.RequireEmailConfirmation,
			Limiter:                  limiter,
		}), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
	}
}
