package app

import (
	"time"

	"github.com/yungbote/examgenius-backend/internal/http"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(log, http.ServerConfig{
		Addr:            ":" + cfg.Port,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    2 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
	}, http.RouterConfig{
		Log:         log,
		ServiceName: cfg.Tracing.ServiceName,
		CORSOrigins: cfg.CORSOrigins,

		TrustedProxies: cfg.TrustedProxies,

		AuthMiddleware: middleware.Auth,
		GeneralLimiter: middleware.GeneralLimiter,
		AuthLimiter:    middleware.AuthLimiter,
		UploadLimiter:  middleware.UploadLimiter,
		AdminLimiter:   middleware.AdminLimiter,

		HealthHandler:     handlers.Health,
		AuthHandler:       handlers.Auth,
		UserHandler:       handlers.User,
		TestHandler:       handlers.Test,
		AttemptHandler:    handlers.Attempt,
		AIHandler:         handlers.AI,
		AIPracticeHandler: handlers.AIPractice,
		AdminHandler:      handlers.Admin,
	})
}
