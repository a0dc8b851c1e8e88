package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/autopilot-backend/internal/http/response"
	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
	"github.com/yungbote/autopilot-backend/internal/services"
)

type ABTestHandler struct {
	opt services.OptimizationService
}

func NewABTestHandler(opt services.OptimizationService) *ABTestHandler {
	return &ABTestHandler{opt: opt}
}

// POST /api/ab-tests
func (h *ABTestHandler) Create(c *gin.Context) {
	var in optimization.CreateTestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	t, err := h.opt.CreateTest(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err, "create_test_failed")
		return
	}
	response.RespondCreated(c, gin.H{"test": t})
}

// POST /api/ab-tests/common
func (h *ABTestHandler) CreateCommon(c *gin.Context) {
	res, err := h.opt.CreateCommonTests(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "create_common_tests_failed")
		return
	}
	response.RespondCreated(c, res)
}

// POST /api/ab-tests/analyze
func (h *ABTestHandler) Analyze(c *gin.Context) {
	res, err := h.opt.AnalyzeTests(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "analyze_tests_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /api/ab-tests
func (h *ABTestHandler) List(c *gin.Context) {
	res, err := h.opt.TestResults(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err, "list_tests_failed")
		return
	}
	response.RespondOK(c, res)
}

type recordEventRequest struct {
	Variant string `json:"variant"`
	Event   string `json:"event"`
	Count   int    `json:"count"`
}

// POST /api/ab-tests/:id/events
func (h *ABTestHandler) RecordEvent(c *gin.Context) {
	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > 1000 {
		response.RespondErr(c, fmt.Errorf("%w: count above 1000", optimization.ErrInvalidArgument), "invalid_request")
		return
	}
	for i := 0; i < req.Count; i++ {
		if err := h.opt.RecordEvent(c.Request.Context(), c.Param("id"), req.Variant, req.Event); err != nil {
			response.RespondErr(c, err, "record_event_failed")
			return
		}
	}
	c.JSON(http.StatusAccepted, gin.H{"recorded": req.Count})
}
