package ab_tests_analyze

import (
	jobrt "github.com/yungbote/autopilot-backend/internal/jobs/runtime"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	jc.Progress("analyze")
	res, err := p.analyzer.AnalyzeTests(jc.Ctx)
	if err != nil {
		jc.Fail("analyze", err)
		return nil
	}
	p.log.Info("ab tests analyzed", "analyzed", res.Analyzed, "completed", res.Completed, "failed", res.Failed)
	jc.Succeed("done", res)
	return nil
}
