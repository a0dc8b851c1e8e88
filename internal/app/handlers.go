package app

import (
	httpserver "github.com/yungbote/autopilot-backend/internal/http"
	httpH "github.com/yungbote/autopilot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/autopilot-backend/internal/http/middleware"
	"github.com/yungbote/autopilot-backend/internal/observability"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

func wireRouterConfig(log *logger.Logger, cfg Config, serviceset Services, metrics *observability.Metrics) httpserver.RouterConfig {
	log.Info("Wiring handlers...")
	rc := httpserver.RouterConfig{
		Log:                 log,
		ServiceName:         "autopilot",
		CORSOrigins:         cfg.HTTP.CORSOrigins,
		HealthHandler:       httpH.NewHealthHandler(serviceset.Health),
		OptimizationHandler: httpH.NewOptimizationHandler(serviceset.Optimization),
		ABTestHandler:       httpH.NewABTestHandler(serviceset.Optimization),
		PromptHandler:       httpH.NewPromptHandler(serviceset.Optimization),
		JobHandler:          httpH.NewJobHandler(serviceset.Jobs),
	}
	if cfg.Telemetry.MetricsEnabled {
		rc.Metrics = metrics
	}
	if serviceset.Auth != nil {
		rc.AuthMiddleware = httpMW.NewAuthMiddleware(log, serviceset.Auth)
	}
	return rc
}
