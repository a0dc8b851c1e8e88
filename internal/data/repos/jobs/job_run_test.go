package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/autopilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
)

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Of(context.Background())
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()

	queued := &types.JobRun{
		ID:        uuid.New(),
		JobType:   "optimization_cycle",
		Trigger:   "manual",
		Status:    types.JobStatusQueued,
		Stage:     "queued",
		Payload:   datatypes.JSON([]byte("{}")),
		Result:    datatypes.JSON([]byte("{}")),
		CreatedAt: now.Add(-3 * time.Hour),
		UpdatedAt: now.Add(-3 * time.Hour),
	}
	failed := &types.JobRun{
		ID:          uuid.New(),
		JobType:     "ab_tests_analyze",
		Trigger:     "schedule",
		Status:      types.JobStatusFailed,
		Stage:       "failed",
		LastErrorAt: ptrTime(now.Add(-2 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-2 * time.Hour),
		UpdatedAt:   now.Add(-2 * time.Hour),
	}
	staleRunning := &types.JobRun{
		ID:          uuid.New(),
		JobType:     "prompts_optimize",
		Trigger:     "schedule",
		Status:      types.JobStatusRunning,
		Stage:       "running",
		HeartbeatAt: ptrTime(now.Add(-10 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-1 * time.Hour),
		UpdatedAt:   now.Add(-1 * time.Hour),
	}

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, staleRunning})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Create: expected 3, got %d", len(created))
	}

	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{queued.ID, failed.ID, staleRunning.ID}); err != nil || len(rows) != 3 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	if ok, err := repo.ExistsRunnable(dbc, "optimization_cycle"); err != nil || !ok {
		t.Fatalf("ExistsRunnable queued: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.ExistsRunnable(dbc, "ab_tests_analyze"); err != nil || ok {
		t.Fatalf("ExistsRunnable failed job: ok=%v err=%v", ok, err)
	}

	wantOrder := []uuid.UUID{queued.ID, failed.ID, staleRunning.ID}
	for i, want := range wantOrder {
		got, err := repo.ClaimNextRunnable(dbc, 3, time.Minute, time.Hour)
		if err != nil {
			t.Fatalf("ClaimNextRunnable #%d: %v", i, err)
		}
		if got == nil || got.ID != want {
			t.Fatalf("ClaimNextRunnable #%d: want=%s got=%v", i, want, got)
		}
		if got.Status != types.JobStatusRunning {
			t.Fatalf("claimed status: want=running got=%s", got.Status)
		}
	}
	if got, err := repo.ClaimNextRunnable(dbc, 3, time.Minute, time.Hour); err != nil || got != nil {
		t.Fatalf("ClaimNextRunnable drained: job=%v err=%v", got, err)
	}

	if err := repo.UpdateFields(dbc, queued.ID, map[string]interface{}{
		"status": types.JobStatusSucceeded,
		"stage":  "done",
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if err := repo.Heartbeat(dbc, failed.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	recent, err := repo.ListRecent(dbc, "optimization_cycle", 5)
	if err != nil || len(recent) != 1 {
		t.Fatalf("ListRecent: err=%v len=%d", err, len(recent))
	}
	if recent[0].Status != types.JobStatusSucceeded || recent[0].Attempts != 1 {
		t.Fatalf("after update: status=%s attempts=%d", recent[0].Status, recent[0].Attempts)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
