package app

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/osteobridge-backend/internal/data/db"
	httpx "github.com/yungbote/osteobridge-backend/internal/http"
	"github.com/yungbote/osteobridge-backend/internal/observability"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *db.Service
	Server   *httpx.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	tracingShutdown func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDatabase connects and bootstraps the schema.
func OpenDatabase(log *logger.Logger, cfg Config) (*db.Service, error) {
	svc, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	return svc, nil
}

func New(ctx context.Context) (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	shutdown := observability.InitTracing(ctx, log, cfg.Tracing)

	dbs, err := OpenDatabase(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := dbs.DB()

	metrics := observability.NewMetrics()

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	reposet := NewRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, metrics)
	if err != nil {
		clients.Close()
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := httpx.NewServer(routerConfig(log, cfg, metrics, handlerset, middleware))

	return &App{
		Log:             log,
		DB:              dbs,
		Server:          server,
		Cfg:             cfg,
		Repos:           reposet,
		Clients:         clients,
		Services:        serviceset,
		Metrics:         metrics,
		tracingShutdown: shutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, ":"+a.Cfg.Port, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.tracingShutdown != nil {
		_ = a.tracingShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
