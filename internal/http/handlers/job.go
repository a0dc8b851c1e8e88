package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/autopilot-backend/internal/http/response"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/autopilot-backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type enqueueRequest struct {
	JobType string         `json:"job_type" binding:"required"`
	Payload map[string]any `json:"payload"`
}

// POST /api/jobs
func (h *JobHandler) Enqueue(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	job, err := h.jobs.Enqueue(dbctx.Of(c.Request.Context()), req.JobType, "", req.Payload)
	if err != nil {
		response.RespondErr(c, err, "enqueue_failed")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.jobs.GetByID(dbctx.Of(c.Request.Context()), jobID)
	if err != nil {
		response.RespondErr(c, err, "get_job_failed")
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /api/jobs?job_type=&limit=
func (h *JobHandler) ListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	jobs, err := h.jobs.ListRecent(dbctx.Of(c.Request.Context()), c.Query("job_type"), limit)
	if err != nil {
		response.RespondErr(c, err, "list_jobs_failed")
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs})
}
