package app

import (
	"database/sql"

	httpH "github.com/yungbote/examgenius-backend/internal/http/handlers"
	httpMW "github.com/yungbote/examgenius-backend/internal/http/middleware"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware

	GeneralLimiter *httpMW.RateLimiter
	AuthLimiter    *httpMW.RateLimiter
	UploadLimiter  *httpMW.RateLimiter
	AdminLimiter   *httpMW.RateLimiter
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	User       *httpH.UserHandler
	Test       *httpH.TestHandler
	Attempt    *httpH.AttemptHandler
	AI         *httpH.AIHandler
	AIPractice *httpH.AIPracticeHandler
	Admin      *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, sqlDB *sql.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	return Handlers{
		Health:     httpH.NewHealthHandler(pinger),
		Auth:       httpH.NewAuthHandler(services.Auth),
		User:       httpH.NewUserHandler(services.User),
		Test:       httpH.NewTestHandler(services.Catalog),
		Attempt:    httpH.NewAttemptHandler(services.Attempt),
		AI:         httpH.NewAIHandler(services.Generation),
		AIPractice: httpH.NewAIPracticeHandler(services.AIPractice),
		Admin:      httpH.NewAdminHandler(services.Admin),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	mw := Middleware{Auth: httpMW.NewAuthMiddleware(log, services.Auth)}
	if !cfg.RateLimitEnabled {
		log.Warn("Rate limiting disabled")
		return mw
	}
	mw.GeneralLimiter = httpMW.NewRateLimiter(log, httpMW.GeneralRateLimit)
	mw.AuthLimiter = httpMW.NewRateLimiter(log, httpMW.AuthRateLimit)
	mw.UploadLimiter = httpMW.NewRateLimiter(log, httpMW.UploadRateLimit)
	mw.AdminLimiter = httpMW.NewRateLimiter(log, httpMW.AdminRateLimit)
	return mw
}
