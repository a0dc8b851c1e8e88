package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/autopilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
)

type fakeEnqueuer struct {
	mu      sync.Mutex
	pending map[string]bool
	calls   map[string]int
	err     error
}

func (f *fakeEnqueuer) EnqueueIfIdle(_ dbctx.Context, jobType, trigger string) (*types.JobRun, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[jobType]++
	if f.err != nil {
		return nil, false, f.err
	}
	if trigger != types.JobTriggerScheduled {
		return nil, false, errors.New("unexpected trigger " + trigger)
	}
	if f.pending[jobType] {
		return nil, false, nil
	}
	f.pending[jobType] = true
	return &types.JobRun{JobType: jobType}, true, nil
}

func TestTickSkipsWhilePending(t *testing.T) {
	f := &fakeEnqueuer{pending: map[string]bool{}, calls: map[string]int{}}
	s := New(testutil.Logger(t), f, nil)

	if !s.Tick(context.Background(), types.JobTypeOptimizationCycle) {
		t.Fatalf("first tick should enqueue")
	}
	if s.Tick(context.Background(), types.JobTypeOptimizationCycle) {
		t.Fatalf("second tick should be skipped")
	}
	f.err = errors.New("db down")
	if s.Tick(context.Background(), types.JobTypePromptsOptimize) {
		t.Fatalf("failing enqueue should report false")
	}
}

func TestStartHonorsDisabledSchedules(t *testing.T) {
	f := &fakeEnqueuer{pending: map[string]bool{}, calls: map[string]int{}}
	s := New(testutil.Logger(t), f, Schedule{
		types.JobTypeABTestsAnalyze:  5 * time.Millisecond,
		types.JobTypePromptsOptimize: 0,
	})
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for {
		f.mu.Lock()
		n := f.calls[types.JobTypeABTestsAnalyze]
		f.mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	s.Wait()

	if f.calls[types.JobTypeABTestsAnalyze] < 2 {
		t.Fatalf("ab analyze ticks: want>=2 got=%d", f.calls[types.JobTypeABTestsAnalyze])
	}
	if f.calls[types.JobTypePromptsOptimize] != 0 {
		t.Fatalf("disabled schedule ran %d times", f.calls[types.JobTypePromptsOptimize])
	}
}
