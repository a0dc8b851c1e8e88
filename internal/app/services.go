package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/jobs/pipeline/ab_tests_analyze"
	"github.com/yungbote/autopilot-backend/internal/jobs/pipeline/optimization_cycle"
	"github.com/yungbote/autopilot-backend/internal/jobs/pipeline/prompts_optimize"
	"github.com/yungbote/autopilot-backend/internal/jobs/runtime"
	"github.com/yungbote/autopilot-backend/internal/jobs/scheduler"
	"github.com/yungbote/autopilot-backend/internal/jobs/worker"
	"github.com/yungbote/autopilot-backend/internal/observability"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
	"github.com/yungbote/autopilot-backend/internal/services"
)

type Services struct {
	Optimization services.OptimizationService
	Jobs         services.JobService
	Health       *services.HealthService
	// Auth is nil when no JWT secret is configured.
	Auth services.AuthService

	Registry  *runtime.Registry
	Worker    *worker.Worker
	Scheduler *scheduler.Scheduler
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	deps := services.OptimizationDeps{
		Entities:  services.NewCatalogEntityStore(log, reposet.Products),
		Metrics:   services.NewCatalogMetricsReader(reposet.Analytics, reposet.Videos),
		Configs:   services.NewConfigDocumentStore(log, reposet.Configs, metrics.IncVersionConflict),
		Sampler:   services.NewEventVariantSampler(reposet.Events),
		Events:    reposet.Events,
		Telemetry: metrics,
	}
	// assign only when set so Publisher stays a nil interface
	if clients.Bus != nil {
		deps.Publisher = clients.Bus
	}
	optimizationService := services.NewOptimizationService(log, cfg.Optimization, deps)
	jobService := services.NewJobService(log, reposet.Jobs)

	health := services.NewHealthService(log, cfg.Telemetry.HealthCacheTTL, time.Now)
	health.Register("database", services.GormPinger{DB: db})
	if clients.Bus != nil {
		health.Register("redis", clients.Bus)
	}

	var auth services.AuthService
	if cfg.Auth.JWTSecret != "" {
		a, err := services.NewAuthService(log, cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			return Services{}, fmt.Errorf("init auth: %w", err)
		}
		auth = a
	} else {
		log.Warn("JWT_SECRET_KEY not set; /api is unauthenticated")
	}

	registry := runtime.NewRegistry()
	for _, h := range []runtime.Handler{
		optimization_cycle.New(log, optimizationService),
		ab_tests_analyze.New(log, optimizationService),
		prompts_optimize.New(log, optimizationService),
	} {
		if err := registry.Register(h); err != nil {
			return Services{}, fmt.Errorf("register %s: %w", h.Type(), err)
		}
	}

	jobWorker := worker.NewWorker(log, reposet.Jobs, registry, metrics, worker.Options{
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.Worker.PollInterval,
		MaxAttempts:  cfg.Worker.MaxAttempts,
		RetryDelay:   cfg.Worker.RetryDelay,
	})
	sched := scheduler.New(log, jobService, scheduler.Schedule{
		types.JobTypeOptimizationCycle: cfg.Schedule.OptimizationCycle,
		types.JobTypeABTestsAnalyze:    cfg.Schedule.ABTestsAnalyze,
		types.JobTypePromptsOptimize:   cfg.Schedule.PromptsOptimize,
	})

	return Services{
		Optimization: optimizationService,
		Jobs:         jobService,
		Health:       health,
		Auth:         auth,
		Registry:     registry,
		Worker:       jobWorker,
		Scheduler:    sched,
	}, nil
}
