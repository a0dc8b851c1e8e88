package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/autopilot-backend/internal/http/response"
	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
	pkgerrors "github.com/yungbote/autopilot-backend/internal/pkg/errors"
	"github.com/yungbote/autopilot-backend/internal/services"
)

type OptimizationHandler struct {
	opt services.OptimizationService
}

func NewOptimizationHandler(opt services.OptimizationService) *OptimizationHandler {
	return &OptimizationHandler{opt: opt}
}

type thresholdRequest struct {
	Threshold *float64 `json:"threshold"`
}

// threshold reads ?threshold= or a JSON body, falling back to def.
func threshold(c *gin.Context, def float64) (float64, error) {
	if raw := strings.TrimSpace(c.Query("threshold")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: threshold %q", pkgerrors.ErrInvalidArgument, raw)
		}
		return v, nil
	}
	if c.Request.ContentLength > 0 {
		var req thresholdRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return 0, fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err)
		}
		if req.Threshold != nil {
			return *req.Threshold, nil
		}
	}
	return def, nil
}

// POST /api/optimization/kill
func (h *OptimizationHandler) Kill(c *gin.Context) {
	t, err := threshold(c, h.opt.Config().KillThreshold)
	if err != nil {
		response.RespondErr(c, err, "kill_failed")
		return
	}
	res, err := h.opt.KillLowPerformers(c.Request.Context(), t)
	if err != nil {
		response.RespondErr(c, err, "kill_failed")
		return
	}
	response.RespondOK(c, res)
}

// POST /api/optimization/scale
func (h *OptimizationHandler) Scale(c *gin.Context) {
	t, err := threshold(c, h.opt.Config().ScaleThreshold)
	if err != nil {
		response.RespondErr(c, err, "scale_failed")
		return
	}
	res, err := h.opt.ScaleWinners(c.Request.Context(), t)
	if err != nil {
		response.RespondErr(c, err, "scale_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/optimization/recommendations
func (h *OptimizationHandler) Recommendations(c *gin.Context) {
	recs, err := h.opt.ScaleRecommendations(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "recommendations_failed")
		return
	}
	response.RespondOK(c, gin.H{"recommendations": recs})
}

// GET /api/optimization/rank
func (h *OptimizationHandler) Rank(c *gin.Context) {
	recs, err := h.opt.RankProducts(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "rank_failed")
		return
	}
	response.RespondOK(c, gin.H{"recommendations": recs})
}

// GET /api/optimization/products/:id
func (h *OptimizationHandler) AnalyzeProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondErr(c, fmt.Errorf("%w: product id", optimization.ErrInvalidArgument), "invalid_product_id")
		return
	}
	rec, err := h.opt.AnalyzeProduct(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err, "analyze_failed")
		return
	}
	// nil means not enough history for a decision
	response.RespondOK(c, gin.H{"recommendation": rec})
}

// POST /api/optimization/cycle
func (h *OptimizationHandler) Cycle(c *gin.Context) {
	res, err := h.opt.RunCycle(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "cycle_failed")
		return
	}
	response.RespondOK(c, res)
}
