package optimization_cycle

import (
	"context"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type Optimizer interface {
	Config() optimization.Config
	KillLowPerformers(ctx context.Context, threshold float64) (*optimization.KillResult, error)
	ScaleWinners(ctx context.Context, threshold float64) (*optimization.ScaleResult, error)
}

type Pipeline struct {
	log *logger.Logger
	opt Optimizer
}

func New(baseLog *logger.Logger, opt Optimizer) *Pipeline {
	return &Pipeline{
		log: baseLog.With("job", types.JobTypeOptimizationCycle),
		opt: opt,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeOptimizationCycle }
