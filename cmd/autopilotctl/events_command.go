package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	redisbus "github.com/yungbote/autopilot-backend/internal/clients/redis"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Watch optimization decisions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "tail",
		Short: "Stream decision events from redis until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if app.Clients.Bus == nil {
				return fmt.Errorf("events tail: REDIS_ADDR is not configured")
			}
			out := cmd.OutOrStdout()
			err = app.Clients.Bus.StartForwarder(cmd.Context(), func(ev redisbus.DecisionEvent) {
				if ctx.jsonOutput() {
					_ = writeJSON(out, ev)
					return
				}
				fmt.Fprintf(out, "%s  %-24s %s\n", ev.OccurredAt.Local().Format(time.RFC3339), ev.Type, ev.SubjectID)
			})
			if err != nil {
				return err
			}
			<-cmd.Context().Done()
			return nil
		},
	})
	return cmd
}
