package ab_tests_analyze

import (
	"context"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type Analyzer interface {
	AnalyzeTests(ctx context.Context) (*optimization.AnalyzeResult, error)
}

type Pipeline struct {
	log      *logger.Logger
	analyzer Analyzer
}

func New(baseLog *logger.Logger, analyzer Analyzer) *Pipeline {
	return &Pipeline{
		log:      baseLog.With("job", types.JobTypeABTestsAnalyze),
		analyzer: analyzer,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeABTestsAnalyze }
