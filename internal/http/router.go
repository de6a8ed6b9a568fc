package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/examgenius-backend/internal/http/handlers"
	httpMW "github.com/yungbote/examgenius-backend/internal/http/middleware"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	// TrustedProxies lists proxy IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the socket address is the client IP.
	TrustedProxies []string

	AuthMiddleware *httpMW.AuthMiddleware

	// Nil limiters pass every request through.
	GeneralLimiter *httpMW.RateLimiter
	AuthLimiter    *httpMW.RateLimiter
	UploadLimiter  *httpMW.RateLimiter
	AdminLimiter   *httpMW.RateLimiter

	HealthHandler     *httpH.HealthHandler
	AuthHandler       *httpH.AuthHandler
	UserHandler       *httpH.UserHandler
	TestHandler       *httpH.TestHandler
	AttemptHandler    *httpH.AttemptHandler
	AIHandler         *httpH.AIHandler
	AIPracticeHandler *httpH.AIPracticeHandler
	AdminHandler      *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "examgenius-backend"
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, ignoring forwarded headers", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	api.Use(cfg.GeneralLimiter.Handler())
	if cfg.HealthHandler != nil {
		api.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	// Auth (public)
	if cfg.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.POST("/register", cfg.AuthLimiter.Handler(), cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthLimiter.Handler(), cfg.AuthHandler.Login)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
		}
		if cfg.UserHandler != nil {
			protected.GET("/auth/profile", cfg.UserHandler.GetProfile)
			protected.PUT("/auth/profile", cfg.UserHandler.UpdateProfile)
		}

		// Tests
		if cfg.TestHandler != nil {
			protected.GET("/tests", cfg.TestHandler.ListTests)
			protected.GET("/tests/:id", cfg.TestHandler.GetTest)
			protected.GET("/tests/:id/stats", cfg.TestHandler.GetTestStats)
		}

		// Attempts
		if cfg.AttemptHandler != nil {
			protected.POST("/attempts", cfg.AttemptHandler.Start)
			protected.GET("/attempts", cfg.AttemptHandler.List)
			protected.POST("/attempts/:id/answer", cfg.AttemptHandler.SubmitAnswer)
			protected.POST("/attempts/:id/finish", cfg.AttemptHandler.Finish)
			protected.GET("/attempts/:id/report", cfg.AttemptHandler.Report)
		}

		// AI generation
		if cfg.AIHandler != nil {
			protected.POST("/ai/generate-similar", cfg.AIHandler.GenerateSimilar)
			protected.GET("/ai/session/:id", cfg.AIHandler.GetSession)
			protected.GET("/ai/history", cfg.AIHandler.History)
		}

		// AI practice
		if cfg.AIPracticeHandler != nil {
			protected.POST("/ai-practice", cfg.AIPracticeHandler.Start)
			protected.GET("/ai-practice/user/all", cfg.AIPracticeHandler.List)
			protected.GET("/ai-practice/:id/questions", cfg.AIPracticeHandler.Questions)
			protected.POST("/ai-practice/:id/answer", cfg.AIPracticeHandler.SubmitAnswer)
			protected.POST("/ai-practice/:id/finish", cfg.AIPracticeHandler.Finish)
			protected.GET("/ai-practice/:id/report", cfg.AIPracticeHandler.Report)
		}
	}

	if cfg.AdminHandler != nil {
		admin := protected.Group("/admin")
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireAdmin())
		}
		admin.Use(cfg.AdminLimiter.Handler())

		admin.POST("/questions/upload", cfg.UploadLimiter.Handler(), cfg.AdminHandler.UploadQuestions)
		admin.GET("/questions", cfg.AdminHandler.ListQuestions)
		admin.GET("/topics", cfg.AdminHandler.ListTopics)
		admin.POST("/sections", cfg.AdminHandler.CreateSection)
		admin.GET("/sections", cfg.AdminHandler.ListSections)
		admin.POST("/tests", cfg.AdminHandler.CreateTest)
		admin.PATCH("/tests/:id/status", cfg.AdminHandler.SetTestStatus)
		admin.GET("/users", cfg.AdminHandler.ListUsers)
		admin.GET("/users/:id/reports", cfg.AdminHandler.UserReports)
	}

	return r
}
