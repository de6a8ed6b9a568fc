package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "JWT_EXPIRES_IN", "ENFORCE_TIME_LIMIT", "AI_PRACTICE_DURATION_SECONDS", "CORS_ORIGINS", "RATE_LIMIT_ENABLED", "TRUSTED_PROXIES"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig(logger.Nop())

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
	require.False(t, cfg.EnforceTimeLimit)
	require.Equal(t, 30*time.Second, cfg.TimeLimitGrace)
	require.Equal(t, 30*time.Minute, cfg.PracticeDuration)
	require.Equal(t, 45*time.Second, cfg.AIGenerationTimeout)
	require.Equal(t, 4000, cfg.AIMaxTokens)
	require.True(t, cfg.RateLimitEnabled)
	require.Empty(t, cfg.CORSOrigins)
	require.Empty(t, cfg.TrustedProxies)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "3600")
	t.Setenv("ENFORCE_TIME_LIMIT", "true")
	t.Setenv("TIME_LIMIT_GRACE", "1m")
	t.Setenv("AI_PRACTICE_DURATION_SECONDS", "600")
	t.Setenv("CORS_ORIGINS", " https://a.example.com, ,https://b.example.com ")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	t.Setenv("AI_MAX_TOKENS", "not-a-number")

	cfg := LoadConfig(logger.Nop())
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, time.Hour, cfg.JWTExpiresIn)
	require.True(t, cfg.EnforceTimeLimit)
	require.Equal(t, time.Minute, cfg.TimeLimitGrace)
	require.Equal(t, 10*time.Minute, cfg.PracticeDuration)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	require.False(t, cfg.RateLimitEnabled)
	require.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
	require.Equal(t, 4000, cfg.AIMaxTokens, "unparseable values fall back to the default")
	require.NoError(t, cfg.ValidateServe())
}

func TestValidateServeRequiresSecret(t *testing.T) {
	err := Config{JWTSecretKey: "  "}.ValidateServe()
	if !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("expected ErrMissingJWTSecret, got %v", err)
	}
}

func TestWireMiddlewareRateLimitToggle(t *testing.T) {
	log := logger.Nop()
	mw := wireMiddleware(log, Config{RateLimitEnabled: false}, Services{})
	require.Nil(t, mw.GeneralLimiter)
	require.NotNil(t, mw.Auth)

	mw = wireMiddleware(log, Config{RateLimitEnabled: true}, Services{})
	require.NotNil(t, mw.GeneralLimiter)
	require.NotNil(t, mw.AuthLimiter)
	require.NotNil(t, mw.UploadLimiter)
	require.NotNil(t, mw.AdminLimiter)
}
