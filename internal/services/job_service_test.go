package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/autopilot-backend/internal/data/repos"
	"github.com/yungbote/autopilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/autopilot-backend/internal/domain"
	pkgerrors "github.com/yungbote/autopilot-backend/internal/pkg/errors"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/autopilot-backend/internal/platform/ctxutil"
)

func TestJobServiceEnqueueCarriesTraceData(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewJobService(log, repos.NewJobRunRepo(db, log))

	ctx := ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{TraceID: "trace-1", RequestID: "req-1"})
	job, err := svc.Enqueue(dbctx.Of(ctx), types.JobTypeOptimizationCycle, "", nil)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if job.Status != types.JobStatusQueued || job.Trigger != types.JobTriggerManual {
		t.Fatalf("job: status=%s trigger=%s", job.Status, job.Trigger)
	}
	var payload map[string]string
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["trace_id"] != "trace-1" || payload["request_id"] != "req-1" {
		t.Fatalf("payload trace data: %v", payload)
	}

	got, err := svc.GetByID(dbctx.Of(ctx), job.ID)
	if err != nil || got.ID != job.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
}

func TestJobServiceRejectsUnknownType(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewJobService(log, repos.NewJobRunRepo(db, log))

	if _, err := svc.Enqueue(dbctx.Of(context.Background()), "course_build", "", nil); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("err: want=ErrInvalidArgument got=%v", err)
	}
	if _, err := svc.GetByID(dbctx.Of(context.Background()), uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err: want=ErrNotFound got=%v", err)
	}
}

func TestEnqueueIfIdleSkipsWhileRunnable(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewJobService(log, repos.NewJobRunRepo(db, log))
	dbc := dbctx.Of(context.Background())

	first, created, err := svc.EnqueueIfIdle(dbc, types.JobTypeABTestsAnalyze, types.JobTriggerScheduled)
	if err != nil || !created || first == nil {
		t.Fatalf("first enqueue: created=%v err=%v", created, err)
	}
	_, created, err = svc.EnqueueIfIdle(dbc, types.JobTypeABTestsAnalyze, types.JobTriggerScheduled)
	if err != nil || created {
		t.Fatalf("second enqueue: want skipped got created=%v err=%v", created, err)
	}
	_, created, err = svc.EnqueueIfIdle(dbc, types.JobTypePromptsOptimize, types.JobTriggerScheduled)
	if err != nil || !created {
		t.Fatalf("other type: want created got created=%v err=%v", created, err)
	}
}
