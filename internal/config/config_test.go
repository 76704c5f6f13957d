package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "flight-auth-service", cfg.App.Name)
	require.Equal(t, 30, cfg.Auth.AccessTokenTTLMin)
	require.Equal(t, 5, cfg.Auth.WarningWindowMin)
	require.Equal(t, "access_token", cfg.Auth.CookieName)
	require.Equal(t, "/login", cfg.Auth.LoginPath)
	require.Equal(t, "/flights", cfg.Auth.LandingPath)
	require.Equal(t, 30*time.Minute, cfg.Auth.TTL())
	require.Equal(t, 5*time.Minute, cfg.Auth.WarningWindow())
	require.Equal(t, 1800, cfg.Auth.CookieMaxAge())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "60")
	t.Setenv("AUTH_WARNING_WINDOW_MINUTES", "10")
	t.Setenv("AUTH_COOKIE_NAME", "fa_token")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, time.Hour, cfg.Auth.TTL())
	require.Equal(t, 10*time.Minute, cfg.Auth.WarningWindow())
	require.Equal(t, "fa_token", cfg.Auth.CookieName)
}

func TestAuthValidate(t *testing.T) {
	valid := AuthConfig{JWTSecret: "s3cret", AccessTokenTTLMin: 30, WarningWindowMin: 5}
	require.NoError(t, valid.Validate("production"))

	cases := []struct {
		name string
		cfg  AuthConfig
		env  string
	}{
		{"empty secret", AuthConfig{AccessTokenTTLMin: 30, WarningWindowMin: 5}, "development"},
		{"dev secret outside development", AuthConfig{JWTSecret: "dev-secret", AccessTokenTTLMin: 30, WarningWindowMin: 5}, "production"},
		{"zero ttl", AuthConfig{JWTSecret: "s3cret", AccessTokenTTLMin: 0, WarningWindowMin: 5}, "development"},
		{"window equals ttl", AuthConfig{JWTSecret: "s3cret", AccessTokenTTLMin: 30, WarningWindowMin: 30}, "development"},
		{"window exceeds ttl", AuthConfig{JWTSecret: "s3cret", AccessTokenTTLMin: 5, WarningWindowMin: 10}, "development"},
		{"zero window", AuthConfig{JWTSecret: "s3cret", AccessTokenTTLMin: 30, WarningWindowMin: 0}, "development"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, tc.cfg.Validate(tc.env))
		})
	}
}

func TestDevSecretAllowedInDevelopment(t *testing.T) {
	cfg := AuthConfig{JWTSecret: "dev-secret", AccessTokenTTLMin: 30, WarningWindowMin: 5}
	require.NoError(t, cfg.Validate("development"))
}
