// Package config загрузка конфигурации сервиса.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	ProviderPassword = "password"
	ProviderFixture  = "fixture"
)

var ErrFixtureInProduction = errors.New("fixture auth provider is not allowed in production")

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Routes  RoutesConfig  `mapstructure:"routes"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"` // development, production
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c ServerConfig) Production() bool {
	return c.Environment == EnvProduction
}

// BackendConfig адрес хранилища и публичный ключ API
type BackendConfig struct {
	URL                     string        `mapstructure:"url"`
	AnonKey                 string        `mapstructure:"anon_key"`
	RealtimeEventsPerSecond float64       `mapstructure:"realtime_events_per_second"`
	PersistSession          bool          `mapstructure:"persist_session"`
	AutoRefreshToken        bool          `mapstructure:"auto_refresh_token"`
	SessionTTL              time.Duration `mapstructure:"session_ttl"`
	Migrate                 bool          `mapstructure:"migrate"`
}

// RedisConfig пустой Addr отключает ограничение попыток входа
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	Provider                 string        `mapstructure:"provider"`
	RequireEmailConfirmation bool          `mapstructure:"require_email_confirmation"`
	SessionSecret            string        `mapstructure:"session_secret"`
	MaxSignInAttempts        int           `mapstructure:"max_sign_in_attempts"`
	AttemptWindow            time.Duration `mapstructure:"attempt_window"`
	FixtureEmail             string        `mapstructure:"fixture_email"`
	FixtureRole              string        `mapstructure:"fixture_role"`
	FixtureOrg               string        `mapstructure:"fixture_org"`
}

type RoutesConfig struct {
	ProtectedPrefixes []string `mapstructure:"protected_prefixes"`
	AuthPaths         []string `mapstructure:"auth_paths"`
	LoginPath         string   `mapstructure:"login_path"`
	DashboardPath     string   `mapstructure:"dashboard_path"`
}

// Load читает config.yaml (необязателен) и переменные окружения DONA_*
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/donaplus")

	v.SetEnvPrefix("DONA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// ключи без дефолтов AutomaticEnv не видит при Unmarshal
	v.BindEnv("backend.url", "DONA_BACKEND_URL")
	v.BindEnv("backend.anon_key", "DONA_BACKEND_ANON_KEY")
	v.BindEnv("redis.addr", "DONA_REDIS_ADDR")
	v.BindEnv("redis.password", "DONA_REDIS_PASSWORD")
	v.BindEnv("auth.session_secret", "DONA_AUTH_SESSION_SECRET")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет сочетания настроек, недопустимые в любом окружении
func (c *Config) Validate() error {
	switch c.Auth.Provider {
	case ProviderPassword:
	case ProviderFixture:
		if c.Server.Production() {
			return ErrFixtureInProduction
		}
	default:
		return fmt.Errorf("unknown auth provider %q", c.Auth.Provider)
	}
	if c.Server.Production() && c.Auth.SessionSecret == "" {
		return errors.New("auth.session_secret is required in production")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", EnvDevelopment)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("backend.realtime_events_per_second", 50)
	v.SetDefault("backend.persist_session", true)
	v.SetDefault("backend.auto_refresh_token", true)
	v.SetDefault("backend.session_ttl", "168h")
	v.SetDefault("backend.migrate", false)

	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.provider", ProviderPassword)
	v.SetDefault("auth.require_email_confirmation", false)
	v.SetDefault("auth.session_secret", "dev-session-secret-change-me")
	v.SetDefault("auth.max_sign_in_attempts", 5)
	v.SetDefault("auth.attempt_window", "15m")
	v.SetDefault("auth.fixture_email", "admin@dona.local")
	v.SetDefault("auth.fixture_role", "org_admin")
	v.SetDefault("auth.fixture_org", "Dona+ Demo")

	v.SetDefault("routes.protected_prefixes", []string{"/dashboard", "/api"})
	v.SetDefault("routes.auth_paths", []string{"/login", "/signup"})
	v.SetDefault("routes.login_path", "/login")
	v.SetDefault("routes.dashboard_path", "/dashboard")
}
