package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/examgenius-backend/internal/data/db"
	"github.com/yungbote/examgenius-backend/internal/http"
	"github.com/yungbote/examgenius-backend/internal/observability"
	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *http.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// Bootstrap loads .env, builds the logger and reads the configuration.
func Bootstrap() (*logger.Logger, Config, error) {
	dotenvErr := loadDotEnv()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, Config{}, fmt.Errorf("init logger: %w", err)
	}
	if dotenvErr != nil {
		log.Debug("No .env file loaded", "error", dotenvErr)
	}

	log.Info("Loading environment variables...")
	return log, LoadConfig(log), nil
}

// NewCore connects and migrates the database and wires repos, clients and services.
// It is enough for the CLI commands that do not serve HTTP.
func NewCore(log *logger.Logger, cfg Config) (*App, error) {
	pg, err := db.NewPostgresService(log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients)

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    reposet,
		Clients:  clients,
		Services: serviceset,
		pg:       pg,
	}, nil
}

// New builds the full HTTP application.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if err := cfg.ValidateServe(); err != nil {
		return nil, err
	}
	otelShutdown := observability.InitTracing(ctx, log, cfg.Tracing)

	a, err := NewCore(log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}
	a.otelShutdown = otelShutdown

	sqlDB, err := a.DB.DB()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	handlerset := wireHandlers(log, sqlDB, a.Services)
	middleware := wireMiddleware(log, cfg, a.Services)
	a.Server = wireServer(log, cfg, handlerset, middleware)
	return a, nil
}

// Start launches background workers.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Services.Janitor != nil {
		a.Services.Janitor.Start(ctx)
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
		if a.Services.Janitor != nil {
			a.Services.Janitor.Wait()
		}
	}
	a.Clients.Close()
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("Close database", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("Shutdown tracing", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
