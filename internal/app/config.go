package app

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/examgenius-backend/internal/llm"
	"github.com/yungbote/examgenius-backend/internal/observability"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"github.com/yungbote/examgenius-backend/internal/utils"
)

type Config struct {
	Port    string
	LogMode string

	JWTSecretKey string
	JWTExpiresIn time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	OpenRouterKey       string
	OpenRouterBaseURL   string
	AIModel             string
	AIGenerationTimeout time.Duration
	AIMaxTokens         int
	AITemperature       float64
	AIRetryAttempts     int

	EnforceTimeLimit bool
	TimeLimitGrace   time.Duration
	PracticeDuration time.Duration
	ExposeAnswerKey  bool

	StaleAttemptAfter time.Duration
	JanitorInterval   time.Duration

	RateLimitEnabled bool
	CORSOrigins      []string
	TrustedProxies   []string

	Tracing observability.TracingConfig
}

// loadDotEnv reads .env into the process environment when the file exists.
// Variables already set win.
func loadDotEnv() error {
	return godotenv.Load()
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:    utils.GetEnv("PORT", "8080", log),
		LogMode: utils.GetEnv("LOG_MODE", "development", log),

		JWTSecretKey: utils.GetEnv("JWT_SECRET_KEY", "", log),
		JWTExpiresIn: utils.GetEnvAsDuration("JWT_EXPIRES_IN", 7*24*time.Hour, log),

		RedisAddr:     utils.GetEnv("REDIS_ADDR", "", log),
		RedisPassword: utils.GetEnv("REDIS_PASSWORD", "", log),
		RedisDB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
		CacheTTL:      utils.GetEnvAsDuration("CACHE_TTL", time.Minute, log),

		OpenRouterKey:       utils.GetEnv("OPENROUTER_KEY", "", log),
		OpenRouterBaseURL:   utils.GetEnv("OPENROUTER_BASE_URL", llm.DefaultOpenRouterBaseURL, log),
		AIModel:             utils.GetEnv("AI_MODEL", llm.DefaultModel, log),
		AIGenerationTimeout: utils.GetEnvAsDuration("AI_GENERATION_TIMEOUT", 45*time.Second, log),
		AIMaxTokens:         utils.GetEnvAsInt("AI_MAX_TOKENS", 4000, log),
		AITemperature:       utils.GetEnvAsFloat("AI_TEMPERATURE", 0.7, log),
		AIRetryAttempts:     utils.GetEnvAsInt("AI_RETRY_ATTEMPTS", 2, log),

		EnforceTimeLimit: utils.GetEnvAsBool("ENFORCE_TIME_LIMIT", false, log),
		TimeLimitGrace:   utils.GetEnvAsDuration("TIME_LIMIT_GRACE", 30*time.Second, log),
		PracticeDuration: time.Duration(utils.GetEnvAsInt("AI_PRACTICE_DURATION_SECONDS", 1800, log)) * time.Second,
		ExposeAnswerKey:  utils.GetEnvAsBool("EXPOSE_ANSWER_KEY", false, log),

		StaleAttemptAfter: utils.GetEnvAsDuration("STALE_ATTEMPT_AFTER", 24*time.Hour, log),
		JanitorInterval:   utils.GetEnvAsDuration("JANITOR_INTERVAL", time.Hour, log),

		RateLimitEnabled: utils.GetEnvAsBool("RATE_LIMIT_ENABLED", true, log),
		CORSOrigins:      splitList(utils.GetEnv("CORS_ORIGINS", "", log)),
		TrustedProxies:   splitList(utils.GetEnv("TRUSTED_PROXIES", "", log)),

		Tracing: observability.TracingConfig{
			Enabled:     utils.GetEnvAsBool("OTEL_ENABLED", false, log),
			ServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "examgenius-backend", log),
			Environment: utils.GetEnv("OTEL_ENVIRONMENT", "", log),
			Version:     utils.GetEnv("OTEL_SERVICE_VERSION", "", log),
			SampleRatio: utils.GetEnvAsFloat("OTEL_SAMPLER_RATIO", 0.1, log),
			Endpoint:    utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     utils.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:    utils.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
		},
	}
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET_KEY must be set")

// ValidateServe checks the settings the HTTP server cannot run without.
func (c Config) ValidateServe() error {
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
