// Package backend единый на процесс клиент хранилища и realtime.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"donaplus/db"
	"donaplus/db/memstore"
	"donaplus/internal/config"
	"donaplus/internal/realtime"
	"donaplus/models"

	"github.com/jmoiron/sqlx"
)

// Store все операции хранилища, которые использует сервис
type Store interface {
	CreateIdentity(ctx context.Context, i *models.Identity) error
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error)
	TouchIdentity(ctx context.Context, id string) error

	CreateAuthSession(ctx context.Context, a *models.AuthSession) error
	GetAuthSession(ctx context.Context, token string) (*models.AuthSession, error)
	ExtendAuthSession(ctx context.Context, token string, expiresAt time.Time) error
	DeleteAuthSession(ctx context.Context, token string) error
	DeleteAuthSessions(ctx context.Context, identityID string) error

	CreateOrganization(ctx context.Context, o *models.Organization) error
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)

	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, fields models.Fields) (*models.Profile, error)
	ListProfiles(ctx context.Context, f models.ProfileFilter) ([]models.Profile, error)
	CountProfiles(ctx context.Context, f models.ProfileFilter) (int, error)

	ListCategories(ctx context.Context, f models.CategoryFilter) ([]models.Category, error)

	CreateCenter(ctx context.Context, c *models.Center) error
	GetCenter(ctx context.Context, id string) (*models.Center, error)
	UpdateCenter(ctx context.Context, id string, fields models.Fields) (*models.Center, error)
	DeleteCenter(ctx context.Context, id string) error
	ListCenters(ctx context.Context, f models.CenterFilter) ([]models.Center, error)
	CountCenters(ctx context.Context, f models.CenterFilter) (int, error)

	CreateDonation(ctx context.Context, d *models.Donation) error
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
	UpdateDonation(ctx context.Context, id string, fields models.Fields) (*models.Donation, error)
	DeleteDonation(ctx context.Context, id string) error
	ListDonations(ctx context.Context, f models.DonationFilter) ([]models.Donation, error)
	CountDonations(ctx context.Context, f models.DonationFilter) (int, error)

	CreateDelivery(ctx context.Context, d *models.Delivery) error
	GetDelivery(ctx context.Context, id string) (*models.Delivery, error)
	UpdateDelivery(ctx context.Context, id string, fields models.Fields) (*models.Delivery, error)
	ListDeliveries(ctx context.Context, f models.DeliveryFilter) ([]models.Delivery, error)
	CountDeliveries(ctx context.Context, f models.DeliveryFilter) (int, error)

	CreateConversation(ctx context.Context, c *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context, f models.ConversationFilter) ([]models.Conversation, error)
	CountConversations(ctx context.Context, f models.ConversationFilter) (int, error)
	CreateMessage(ctx context.Context, m *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	UpdateMessage(ctx context.Context, id string, fields models.Fields) (*models.Message, error)
	ListMessages(ctx context.Context, f models.MessageFilter) ([]models.Message, error)

	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*db.Storage)(nil)
	_ Store = (*memstore.Store)(nil)
)

type AuthOptions struct {
	PersistSession   bool
	AutoRefreshToken bool
	SessionTTL       time.Duration
}

type Config struct {
	URL                     string
	AnonKey                 string
	RealtimeEventsPerSecond float64
	Auth                    AuthOptions
}

// FromConfig переносит секцию backend конфигурации сервиса
func FromConfig(c config.BackendConfig) Config {
	return Config{
		URL:                     c.URL,
		AnonKey:                 c.AnonKey,
		RealtimeEventsPerSecond: c.RealtimeEventsPerSecond,
		Auth: AuthOptions{
			PersistSession:   c.PersistSession,
			AutoRefreshToken: c.AutoRefreshToken,
			SessionTTL:       c.SessionTTL,
		},
	}
}

// ConfigError не заданы обязательные переменные окружения
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing backend configuration: " + strings.Join(e.Missing, ", ")
}

func (c Config) validate() error {
	var missing []string
	if strings.TrimSpace(c.URL) == "" {
		missing = append(missing, "DONA_BACKEND_URL")
	}
	if strings.TrimSpace(c.AnonKey) == "" {
		missing = append(missing, "DONA_BACKEND_ANON_KEY")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

type Client struct {
	store Store
	sqlDB *sqlx.DB
	hub   *realtime.Hub
	cfg   Config
	once  sync.Once
}

func (c *Client) Store() Store            { return c.store }
func (c *Client) Realtime() *realtime.Hub { return c.hub }
func (c *Client) Options() AuthOptions    { return c.cfg.Auth }
func (c *Client) AnonKey() string         { return c.cfg.AnonKey }

// DB пул PostgreSQL, nil для хранилища в памяти
func (c *Client) DB() *sqlx.DB { return c.sqlDB }

// Close закрывает подписки realtime и хранилище, повторный вызов ничего не делает
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.hub.Close()
		err = c.store.Close()
	})
	return err
}

// NewClient создает клиент без кэширования
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, hub: realtime.NewHub(cfg.RealtimeEventsPerSecond)}
	switch {
	case strings.HasPrefix(cfg.URL, "memory://"):
		ms := memstore.New()
		ms.SeedCategories()
		c.store = ms
	case strings.HasPrefix(cfg.URL, "postgres://"), strings.HasPrefix(cfg.URL, "postgresql://"):
		st, err := db.Open(cfg.URL)
		if err != nil {
			c.hub.Close()
			return nil, err
		}
		c.store, c.sqlDB = st, st.DB()
	default:
		c.hub.Close()
		return nil, fmt.Errorf("unsupported backend url scheme: %q", schemeOf(cfg.URL))
	}
	return c, nil
}

func schemeOf(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i]
	}
	return url
}

var (
	mu     sync.Mutex
	cached *Client
)

// GetOrCreateClient возвращает общий клиент, создавая его при первом вызове.
// Конфигурация последующих вызовов игнорируется до ResetClient.
func GetOrCreateClient(cfg Config) (*Client, error) {
	mu.Lock()
	defer mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("backend client created", "scheme", schemeOf(cfg.URL))
	cached = c
	return c, nil
}

// ResetClient закрывает и сбрасывает общий клиент
func ResetClient() {
	mu.Lock()
	c := cached
	cached = nil
	mu.Unlock()
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("close backend client", "error", err)
	}
}
