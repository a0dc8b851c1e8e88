package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/autopilot-backend/internal/data/repos"
	types "github.com/yungbote/autopilot-backend/internal/domain"
	pkgerrors "github.com/yungbote/autopilot-backend/internal/pkg/errors"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/autopilot-backend/internal/platform/ctxutil"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

var knownJobTypes = map[string]struct{}{
	types.JobTypeOptimizationCycle: {},
	types.JobTypeABTestsAnalyze:    {},
	types.JobTypePromptsOptimize:   {},
}

type JobService interface {
	Enqueue(dbc dbctx.Context, jobType string, trigger string, payload map[string]any) (*types.JobRun, error)
	// EnqueueIfIdle skips the insert when a queued or running job of the same type exists.
	EnqueueIfIdle(dbc dbctx.Context, jobType string, trigger string) (*types.JobRun, bool, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error)
	ListRecent(dbc dbctx.Context, jobType string, limit int) ([]*types.JobRun, error)
}

type jobService struct {
	log  *logger.Logger
	repo repos.JobRunRepo
}

func NewJobService(baseLog *logger.Logger, repo repos.JobRunRepo) JobService {
	return &jobService{
		log:  baseLog.With("service", "JobService"),
		repo: repo,
	}
}

func (s *jobService) Enqueue(dbc dbctx.Context, jobType string, trigger string, payload map[string]any) (*types.JobRun, error) {
	jobType = strings.TrimSpace(jobType)
	if _, ok := knownJobTypes[jobType]; !ok {
		return nil, fmt.Errorf("%w: unknown job_type %q", pkgerrors.ErrInvalidArgument, jobType)
	}
	if trigger == "" {
		trigger = types.JobTriggerManual
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		if td.TraceID != "" {
			payload["trace_id"] = td.TraceID
		}
		if td.RequestID != "" {
			payload["request_id"] = td.RequestID
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode job payload: %w", err)
	}
	job := &types.JobRun{
		JobType: jobType,
		Trigger: trigger,
		Status:  types.JobStatusQueued,
		Stage:   "queued",
		Payload: datatypes.JSON(raw),
	}
	created, err := s.repo.Create(dbc, []*types.JobRun{job})
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	s.log.Info("job enqueued", "job_id", created[0].ID, "job_type", jobType, "trigger", trigger)
	return created[0], nil
}

func (s *jobService) EnqueueIfIdle(dbc dbctx.Context, jobType string, trigger string) (*types.JobRun, bool, error) {
	busy, err := s.repo.ExistsRunnable(dbc, jobType)
	if err != nil {
		return nil, false, fmt.Errorf("check runnable %s: %w", jobType, err)
	}
	if busy {
		return nil, false, nil
	}
	job, err := s.Enqueue(dbc, jobType, trigger, nil)
	if err != nil {
		return nil, false, err
	}
	return job, true, nil
}

func (s *jobService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error) {
	rows, err := s.repo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("job %s: %w", id, pkgerrors.ErrNotFound)
	}
	return rows[0], nil
}

func (s *jobService) ListRecent(dbc dbctx.Context, jobType string, limit int) ([]*types.JobRun, error) {
	return s.repo.ListRecent(dbc, strings.TrimSpace(jobType), limit)
}
