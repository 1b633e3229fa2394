package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DONA_BACKEND_URL", "memory://")
	t.Setenv("DONA_BACKEND_ANON_KEY", "anon")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, EnvDevelopment, cfg.Server.Environment)
	require.Equal(t, "memory://", cfg.Backend.URL)
	require.Equal(t, "anon", cfg.Backend.AnonKey)
	require.Equal(t, 168*time.Hour, cfg.Backend.SessionTTL)
	require.Equal(t, []string{"/dashboard", "/api"}, cfg.Routes.ProtectedPrefixes)
	require.Equal(t, ProviderPassword, cfg.Auth.Provider)
	require.Equal(t, 15*time.Minute, cfg.Auth.AttemptWindow)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DONA_SERVER_PORT", "9090")
	t.Setenv("DONA_AUTH_PROVIDER", "fixture")
	t.Setenv("DONA_AUTH_FIXTURE_ROLE", "super_admin")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, ProviderFixture, cfg.Auth.Provider)
	require.Equal(t, "super_admin", cfg.Auth.FixtureRole)
	require.Empty(t, cfg.Backend.URL)
}

func TestLoad_FixtureRejectedInProduction(t *testing.T) {
	t.Setenv("DONA_SERVER_ENVIRONMENT", "production")
	t.Setenv("DONA_AUTH_PROVIDER", "fixture")

	_, err := Load()
	require.ErrorIs(t, err, ErrFixtureInProduction)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{Provider: "ldap"}}
	require.Error(t, cfg.Validate())

	cfg = &Config{
		Server: ServerConfig{Environment: EnvProduction},
		Auth:   AuthConfig{Provider: ProviderPassword},
	}
	require.Error(t, cfg.Validate(), "session secret required")

	cfg.Auth.SessionSecret = "s3cret"
	require.NoError(t, cfg.Validate())
}
