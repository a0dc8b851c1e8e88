package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/autopilot-backend/internal/data/repos"
	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/autopilot-backend/internal/platform/ctxutil"
)

/*
Context is the execution handle for a single claimed job run.
Pipelines report progress and terminate only through it; they never write
job_run rows directly.
*/
type Context struct {
	Ctx     context.Context
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	payload map[string]any
	done    bool
	now     func() time.Time
}

func NewContext(ctx context.Context, job *types.JobRun, repo repos.JobRunRepo) *Context {
	c := &Context{
		Ctx:  ctx,
		Job:  job,
		Repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
	_ = c.decodePayload()
	c.applyTraceData()
	return c
}

// decodePayload leaves an empty map behind on malformed JSON so handlers can
// decide whether missing inputs are fatal.
func (c *Context) decodePayload() error {
	c.payload = map[string]any{}
	if c.Job == nil || len(c.Job.Payload) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		return err
	}
	if m != nil {
		c.payload = m
	}
	return nil
}

func (c *Context) applyTraceData() {
	if c.Ctx == nil {
		c.Ctx = context.Background()
	}
	traceID := c.PayloadString("trace_id")
	reqID := c.PayloadString("request_id")
	if traceID == "" && reqID == "" {
		return
	}
	c.Ctx = ctxutil.WithTraceData(c.Ctx, &ctxutil.TraceData{TraceID: traceID, RequestID: reqID})
}

func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

func (c *Context) PayloadString(key string) string {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// PayloadFloat returns (value, true) only for numeric payload fields.
func (c *Context) PayloadFloat(key string) (float64, bool) {
	switch v := c.Payload()[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Done reports whether Fail or Succeed has already been recorded.
func (c *Context) Done() bool { return c.done }

func (c *Context) jobID() uuid.UUID {
	if c.Job == nil {
		return uuid.Nil
	}
	return c.Job.ID
}

// Progress records the current stage and refreshes the heartbeat.
func (c *Context) Progress(stage string) {
	now := c.now()
	if c.Repo != nil && c.jobID() != uuid.Nil {
		_ = c.Repo.UpdateFields(dbctx.Of(c.Ctx), c.jobID(), map[string]interface{}{
			"stage":        stage,
			"heartbeat_at": now,
		})
	}
	if c.Job != nil {
		c.Job.Stage = stage
		c.Job.HeartbeatAt = &now
	}
}

func (c *Context) Fail(stage string, err error) {
	if c.done {
		return
	}
	c.done = true
	now := c.now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if c.Repo != nil && c.jobID() != uuid.Nil {
		_ = c.Repo.UpdateFields(dbctx.Of(context.WithoutCancel(c.Ctx)), c.jobID(), map[string]interface{}{
			"status":        types.JobStatusFailed,
			"stage":         stage,
			"error":         msg,
			"last_error_at": now,
			"locked_at":     nil,
		})
	}
	if c.Job != nil {
		c.Job.Status = types.JobStatusFailed
		c.Job.Stage = stage
		c.Job.Error = msg
		c.Job.LastErrorAt = &now
		c.Job.LockedAt = nil
	}
}

func (c *Context) Succeed(finalStage string, result any) {
	if c.done {
		return
	}
	c.done = true
	now := c.now()
	var res datatypes.JSON
	if result != nil {
		b, _ := json.Marshal(result)
		res = datatypes.JSON(b)
	}
	if c.Repo != nil && c.jobID() != uuid.Nil {
		_ = c.Repo.UpdateFields(dbctx.Of(context.WithoutCancel(c.Ctx)), c.jobID(), map[string]interface{}{
			"status":       types.JobStatusSucceeded,
			"stage":        finalStage,
			"error":        "",
			"result":       res,
			"locked_at":    nil,
			"heartbeat_at": now,
			"finished_at":  now,
		})
	}
	if c.Job != nil {
		c.Job.Status = types.JobStatusSucceeded
		c.Job.Stage = finalStage
		c.Job.Error = ""
		c.Job.Result = res
		c.Job.LockedAt = nil
		c.Job.FinishedAt = &now
	}
}
