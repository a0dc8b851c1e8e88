package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/autopilot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/autopilot-backend/internal/http/middleware"
	"github.com/yungbote/autopilot-backend/internal/observability"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	OptimizationHandler *httpH.OptimizationHandler
	ABTestHandler       *httpH.ABTestHandler
	PromptHandler       *httpH.PromptHandler
	JobHandler          *httpH.JobHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "autopilot"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if h := cfg.OptimizationHandler; h != nil {
		api.POST("/optimization/kill", h.Kill)
		api.POST("/optimization/scale", h.Scale)
		api.GET("/optimization/recommendations", h.Recommendations)
		api.GET("/optimization/rank", h.Rank)
		api.GET("/optimization/products/:id", h.AnalyzeProduct)
		api.POST("/optimization/cycle", h.Cycle)
	}

	if h := cfg.ABTestHandler; h != nil {
		api.GET("/ab-tests", h.List)
		api.POST("/ab-tests", h.Create)
		api.POST("/ab-tests/common", h.CreateCommon)
		api.POST("/ab-tests/analyze", h.Analyze)
		api.POST("/ab-tests/:id/events", h.RecordEvent)
	}

	if h := cfg.PromptHandler; h != nil {
		api.GET("/prompts", h.List)
		api.POST("/prompts/optimize", h.Optimize)
		api.POST("/prompts/:id/usage", h.TrackUsage)
		api.GET("/prompts/performance", h.Performance)
	}

	if h := cfg.JobHandler; h != nil {
		api.GET("/jobs", h.ListJobs)
		api.POST("/jobs", h.Enqueue)
		api.GET("/jobs/:id", h.GetJob)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})
	return r
}
