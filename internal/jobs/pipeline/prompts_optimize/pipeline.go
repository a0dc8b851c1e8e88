package prompts_optimize

import (
	jobrt "github.com/yungbote/autopilot-backend/internal/jobs/runtime"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	jc.Progress("optimize")
	res, err := p.opt.OptimizePrompts(jc.Ctx)
	if err != nil {
		jc.Fail("optimize", err)
		return nil
	}
	if res.NewVersion != nil {
		p.log.Info("prompt variant created", "version", res.NewVersion.Version, "improvement", res.Improvement)
	}
	jc.Succeed("done", res)
	return nil
}
