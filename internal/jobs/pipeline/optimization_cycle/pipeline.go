package optimization_cycle

import (
	jobrt "github.com/yungbote/autopilot-backend/internal/jobs/runtime"
)

// Run kills before it scales. Payload may override kill_threshold and scale_threshold.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	cfg := p.opt.Config()
	killThreshold := cfg.KillThreshold
	if v, ok := jc.PayloadFloat("kill_threshold"); ok {
		killThreshold = v
	}
	scaleThreshold := cfg.ScaleThreshold
	if v, ok := jc.PayloadFloat("scale_threshold"); ok {
		scaleThreshold = v
	}

	jc.Progress("kill")
	kill, err := p.opt.KillLowPerformers(jc.Ctx, killThreshold)
	if err != nil {
		jc.Fail("kill", err)
		return nil
	}

	jc.Progress("scale")
	scale, err := p.opt.ScaleWinners(jc.Ctx, scaleThreshold)
	if err != nil {
		jc.Fail("scale", err)
		return nil
	}

	p.log.Info("optimization cycle finished",
		"killed", kill.Killed,
		"protected", kill.Protected,
		"scaled", scale.Scaled,
		"failed", kill.Failed+scale.Failed,
	)
	jc.Succeed("done", map[string]any{
		"kill":  kill,
		"scale": scale,
	})
	return nil
}
