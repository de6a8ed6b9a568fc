package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/examgenius-backend/internal/data/cache"
	"github.com/yungbote/examgenius-backend/internal/llm"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type Clients struct {
	Cache cache.Cache
	// LLM is nil when OPENROUTER_KEY is unset; generation then uses templates only.
	LLM llm.Provider
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	c, err := cache.New(log, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   "examgenius:",
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init cache: %w", err)
	}

	var provider llm.Provider
	if strings.TrimSpace(cfg.OpenRouterKey) != "" {
		or, err := llm.NewOpenRouterProvider(llm.OpenRouterConfig{
			APIKey:  cfg.OpenRouterKey,
			BaseURL: cfg.OpenRouterBaseURL,
			Model:   cfg.AIModel,
			Title:   "ExamGenius",
			Timeout: cfg.AIGenerationTimeout,
		})
		if err != nil {
			_ = c.Close()
			return Clients{}, fmt.Errorf("init openrouter: %w", err)
		}
		retry := llm.DefaultRetryConfig()
		if cfg.AIRetryAttempts > 0 {
			retry.MaxAttempts = cfg.AIRetryAttempts
		}
		provider = llm.WithRetry(or, retry)
		log.Info("LLM provider ready", "model", or.ModelID())
	} else {
		log.Warn("OPENROUTER_KEY not set, practice generation will use templates only")
	}

	return Clients{Cache: c, LLM: provider}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}
