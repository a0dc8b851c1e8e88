package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/autopilot-backend/internal/http/response"
	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
	"github.com/yungbote/autopilot-backend/internal/services"
)

type PromptHandler struct {
	opt services.OptimizationService
}

func NewPromptHandler(opt services.OptimizationService) *PromptHandler {
	return &PromptHandler{opt: opt}
}

// GET /api/prompts
func (h *PromptHandler) List(c *gin.Context) {
	versions, err := h.opt.PromptVersions(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "list_prompts_failed")
		return
	}
	response.RespondOK(c, gin.H{"versions": versions})
}

// POST /api/prompts/optimize
func (h *PromptHandler) Optimize(c *gin.Context) {
	res, err := h.opt.OptimizePrompts(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "optimize_prompts_failed")
		return
	}
	response.RespondOK(c, res)
}

// POST /api/prompts/:id/usage
func (h *PromptHandler) TrackUsage(c *gin.Context) {
	var sample optimization.UsageSample
	if err := c.ShouldBindJSON(&sample); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	found, err := h.opt.TrackUsage(c.Request.Context(), c.Param("id"), sample)
	if err != nil {
		response.RespondErr(c, err, "track_usage_failed")
		return
	}
	// unknown versions are a no-op by contract; report it without failing
	response.RespondOK(c, gin.H{"tracked": found})
}

// GET /api/prompts/performance
func (h *PromptHandler) Performance(c *gin.Context) {
	res, err := h.opt.PromptPerformance(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "prompt_performance_failed")
		return
	}
	response.RespondOK(c, res)
}
