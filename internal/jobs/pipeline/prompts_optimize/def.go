package prompts_optimize

import (
	"context"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type Optimizer interface {
	OptimizePrompts(ctx context.Context) (*optimization.OptimizeResult, error)
}

type Pipeline struct {
	log *logger.Logger
	opt Optimizer
}

func New(baseLog *logger.Logger, opt Optimizer) *Pipeline {
	return &Pipeline{
		log: baseLog.With("job", types.JobTypePromptsOptimize),
		opt: opt,
	}
}

func (p *Pipeline) Type() string { return types.JobTypePromptsOptimize }
