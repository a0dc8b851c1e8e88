package optimization_cycle

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	jobrt "github.com/yungbote/autopilot-backend/internal/jobs/runtime"
	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type fakeOptimizer struct {
	calls    []string
	kills    []float64
	scales   []float64
	scaleErr error
}

func (f *fakeOptimizer) Config() optimization.Config { return optimization.DefaultConfig() }

func (f *fakeOptimizer) KillLowPerformers(_ context.Context, threshold float64) (*optimization.KillResult, error) {
	f.calls = append(f.calls, "kill")
	f.kills = append(f.kills, threshold)
	return &optimization.KillResult{Killed: 1, Products: []string{"Loser"}}, nil
}

func (f *fakeOptimizer) ScaleWinners(_ context.Context, threshold float64) (*optimization.ScaleResult, error) {
	f.calls = append(f.calls, "scale")
	f.scales = append(f.scales, threshold)
	if f.scaleErr != nil {
		return nil, f.scaleErr
	}
	return &optimization.ScaleResult{Scaled: 2}, nil
}

func newJob(payload string) *types.JobRun {
	return &types.JobRun{ID: uuid.Nil, JobType: types.JobTypeOptimizationCycle, Payload: []byte(payload)}
}

func TestCycleKillsThenScalesWithPayloadOverrides(t *testing.T) {
	f := &fakeOptimizer{}
	p := New(logger.NewNop(), f)
	jc := jobrt.NewContext(context.Background(), newJob(`{"kill_threshold":0.25}`), nil)

	if err := p.Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.calls) != 2 || f.calls[0] != "kill" || f.calls[1] != "scale" {
		t.Fatalf("order: %v", f.calls)
	}
	if f.kills[0] != 0.25 || f.scales[0] != optimization.DefaultScaleThreshold {
		t.Fatalf("thresholds: kill=%v scale=%v", f.kills[0], f.scales[0])
	}
	if jc.Job.Status != types.JobStatusSucceeded {
		t.Fatalf("status: want=succeeded got=%s", jc.Job.Status)
	}
}

func TestCycleFailsOnScaleError(t *testing.T) {
	f := &fakeOptimizer{scaleErr: errors.New("version conflict")}
	p := New(logger.NewNop(), f)
	jc := jobrt.NewContext(context.Background(), newJob(``), nil)

	_ = p.Run(jc)
	if jc.Job.Status != types.JobStatusFailed || jc.Job.Stage != "scale" {
		t.Fatalf("want failed at scale, got %s at %s", jc.Job.Status, jc.Job.Stage)
	}
	if f.kills[0] != optimization.DefaultKillThreshold {
		t.Fatalf("kill threshold default: got=%v", f.kills[0])
	}
}
