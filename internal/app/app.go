package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/autopilot-backend/internal/data/db"
	httpserver "github.com/yungbote/autopilot-backend/internal/http"
	"github.com/yungbote/autopilot-backend/internal/observability"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics
	Server   *httpserver.Server

	pg            *db.PostgresService
	cancel        context.CancelFunc
	traceShutdown func(context.Context) error
}

// New loads configuration and wires every component. Nothing runs until Start.
func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(log, cfg)
}

func NewWithConfig(log *logger.Logger, cfg Config) (*App, error) {
	pg, err := db.NewPostgresService(db.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := pg.DB()
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrateAll(theDB); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	metrics := observability.Init(log)
	metrics.SetScrapeInterval(cfg.Telemetry.ScrapeInterval)

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, metrics)
	if err != nil {
		clients.Close()
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	server := httpserver.NewServer(cfg.HTTP.Addr, wireRouterConfig(log, cfg, serviceset, metrics))

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    reposet,
		Clients:  clients,
		Services: serviceset,
		Metrics:  metrics,
		Server:   server,
		pg:       pg,
	}, nil
}

// Start launches tracing, collectors, the job worker and the scheduler.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.traceShutdown = observability.InitTracing(ctx, a.Log, observability.TracingConfig{
		Enabled:     a.Cfg.Telemetry.TracingEnabled,
		ServiceName: "autopilot",
		Environment: a.Cfg.Environment,
		Version:     a.Cfg.Version,
		Endpoint:    a.Cfg.Telemetry.OTLPEndpoint,
		Headers:     a.Cfg.Telemetry.OTLPHeaders,
		Insecure:    a.Cfg.Telemetry.OTLPInsecure,
		SampleRatio: a.Cfg.Telemetry.TraceSampleRatio,
	})

	if a.Cfg.Telemetry.MetricsEnabled {
		a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
		a.Metrics.StartJobQueueCollector(ctx, a.Log, a.DB)
		if a.Clients.Bus != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Bus)
		}
	}

	if a.Cfg.Worker.Enabled {
		a.Services.Worker.Start(ctx)
		a.Services.Scheduler.Start(ctx)
	} else {
		a.Log.Info("job worker disabled")
	}
}

// Run serves HTTP until the server is shut down.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("http server listening", "addr", a.Cfg.HTTP.Addr)
	return a.Server.Run()
}

// Close drains HTTP, stops background loops and releases connections.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
		a.waitBackground(ctx)
	}
	if a.traceShutdown != nil {
		if err := a.traceShutdown(ctx); err != nil {
			a.Log.Warn("trace shutdown", "error", err)
		}
	}
	a.Clients.Close()
	if a.pg != nil {
		_ = a.pg.Close()
	}
	a.Log.Sync()
}

func (a *App) waitBackground(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.Services.Worker.Wait()
		a.Services.Scheduler.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.Log.Warn("background loops did not stop before deadline")
	}
}
