package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
	"github.com/yungbote/examgenius-backend/internal/practicegen"
	"github.com/yungbote/examgenius-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Catalog    services.CatalogService
	Attempt    services.AttemptService
	Generation services.GenerationService
	AIPractice services.AIPracticeService
	Admin      services.AdminService
	Janitor    services.JanitorService
}

func newGenerator(log *logger.Logger, cfg Config, clients Clients) *practicegen.Generator {
	if clients.LLM == nil {
		return practicegen.New(nil, log)
	}
	enricher := practicegen.NewLLMEnricher(clients.LLM, practicegen.LLMEnricherConfig{
		Timeout:     cfg.AIGenerationTimeout,
		MaxTokens:   cfg.AIMaxTokens,
		Temperature: cfg.AITemperature,
	}, log)
	return practicegen.New(enricher, log)
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, clients Clients) Services {
	log.Info("Wiring services...")

	timing := services.TimingConfig{
		ExposeAnswerKey:  cfg.ExposeAnswerKey,
		EnforceTimeLimit: cfg.EnforceTimeLimit,
		TimeLimitGrace:   cfg.TimeLimitGrace,
	}

	authService := services.NewAuthService(db, log, r.User, services.AuthConfig{
		JWTSecretKey: cfg.JWTSecretKey,
		TokenTTL:     cfg.JWTExpiresIn,
	}, nil)
	userService := services.NewUserService(db, log, r.User)
	catalogService := services.NewCatalogService(db, log, r.Test, r.Attempt, clients.Cache, cfg.CacheTTL)
	attemptService := services.NewAttemptService(db, log, r.Test, r.Attempt, r.Answer, timing, nil)
	generationService := services.NewGenerationService(
		db, log,
		r.Attempt, r.Answer,
		r.PracticeSession, r.GeneratedQuestion,
		newGenerator(log, cfg, clients),
		cfg.ExposeAnswerKey,
	)
	practiceService := services.NewAIPracticeService(
		db, log,
		r.Attempt,
		r.PracticeSession, r.GeneratedQuestion, r.PracticeAttempt, r.PracticeAnswer,
		timing, cfg.PracticeDuration, nil,
	)
	adminService := services.NewAdminService(
		db, log,
		r.User, r.Topic, r.Question, r.Section, r.Test, r.Attempt, r.Answer,
		catalogService,
	)
	janitorService := services.NewJanitorService(db, log, r.Attempt, r.PracticeAttempt, services.JanitorConfig{
		StaleAfter: cfg.StaleAttemptAfter,
		Interval:   cfg.JanitorInterval,
	}, nil)

	return Services{
		Auth:       authService,
		User:       userService,
		Catalog:    catalogService,
		Attempt:    attemptService,
		Generation: generationService,
		AIPractice: practiceService,
		Admin:      adminService,
		Janitor:    janitorService,
	}
}
