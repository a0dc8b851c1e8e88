package scheduler

import (
	"context"
	"sync"
	"time"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

// Enqueuer is satisfied by services.JobService.
type Enqueuer interface {
	EnqueueIfIdle(dbc dbctx.Context, jobType string, trigger string) (*types.JobRun, bool, error)
}

// Schedule maps a job type to its cadence. A zero or negative interval disables it.
type Schedule map[string]time.Duration

type Scheduler struct {
	log      *logger.Logger
	jobs     Enqueuer
	schedule Schedule
	wg       sync.WaitGroup
}

func New(baseLog *logger.Logger, jobs Enqueuer, schedule Schedule) *Scheduler {
	return &Scheduler{
		log:      baseLog.With("component", "JobScheduler"),
		jobs:     jobs,
		schedule: schedule,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	for jobType, every := range s.schedule {
		if every <= 0 {
			s.log.Info("schedule disabled", "job_type", jobType)
			continue
		}
		s.wg.Add(1)
		go func(jobType string, every time.Duration) {
			defer s.wg.Done()
			s.loop(ctx, jobType, every)
		}(jobType, every)
	}
}

func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) loop(ctx context.Context, jobType string, every time.Duration) {
	s.log.Info("schedule started", "job_type", jobType, "every", every.String())
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx, jobType)
		}
	}
}

// Tick enqueues jobType unless a run of it is already queued or running.
func (s *Scheduler) Tick(ctx context.Context, jobType string) bool {
	job, created, err := s.jobs.EnqueueIfIdle(dbctx.Of(ctx), jobType, types.JobTriggerScheduled)
	if err != nil {
		s.log.Warn("scheduled enqueue failed", "job_type", jobType, "error", err)
		return false
	}
	if !created {
		s.log.Debug("scheduled run skipped, previous run still pending", "job_type", jobType)
		return false
	}
	s.log.Debug("scheduled run enqueued", "job_type", jobType, "job_id", job.ID)
	return true
}
