package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/autopilot-backend/internal/app"
	"github.com/yungbote/autopilot-backend/internal/platform/envutil"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	appOnce sync.Once
	app     *app.App
	appErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, jsonFlag: jsonFlag}
}

// ensureApp wires the backend once per invocation. The worker, scheduler and
// HTTP server are never started.
func (c *commandContext) ensureApp() (*app.App, error) {
	c.appOnce.Do(func() {
		log, err := logger.New(envutil.String("LOG_MODE", "test"))
		if err != nil {
			c.appErr = fmt.Errorf("init logger: %w", err)
			return
		}
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if path == "" {
			path = envutil.String("CONFIG_FILE", "")
		}
		cfg, err := app.LoadConfigFile(path)
		if err != nil {
			c.appErr = err
			return
		}
		c.app, c.appErr = app.NewWithConfig(log, cfg)
	})
	return c.app, c.appErr
}

func (c *commandContext) close() {
	if c.app == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.app.Close(ctx)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}
