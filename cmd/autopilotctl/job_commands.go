package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Queue and inspect background jobs",
	}
	cmd.AddCommand(newJobsEnqueueCommand(ctx))
	cmd.AddCommand(newJobsListCommand(ctx))
	cmd.AddCommand(newJobsGetCommand(ctx))
	return cmd
}

func newJobsEnqueueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <optimization_cycle|ab_tests_analyze|prompts_optimize>",
		Short: "Queue a job for the server's worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			job, err := app.Services.Jobs.Enqueue(dbctx.Of(cmd.Context()), args[0], types.JobTriggerManual, nil)
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), job, func(out io.Writer) {
				fmt.Fprintf(out, "Queued %s job %s\n", job.JobType, job.ID)
			})
		},
	}
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var jobType string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			jobs, err := app.Services.Jobs.ListRecent(dbctx.Of(cmd.Context()), jobType, limit)
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), jobs, func(out io.Writer) { printJobs(out, jobs) })
		},
	}
	cmd.Flags().StringVar(&jobType, "type", "", "Only jobs of this type")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows")
	return cmd
}

func newJobsGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Show one job with its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", args[0], err)
			}
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			job, err := app.Services.Jobs.GetByID(dbctx.Of(cmd.Context()), id)
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), job, func(out io.Writer) {
				printJobs(out, []*types.JobRun{job})
				if len(job.Result) > 0 {
					fmt.Fprintf(out, "Result: %s\n", string(job.Result))
				}
			})
		},
	}
}

func printJobs(out io.Writer, jobs []*types.JobRun) {
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs")
		return
	}
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			j.ID.String(), j.JobType, j.Trigger, j.Status, j.Stage,
			strconv.Itoa(j.Attempts), formatTime(&j.CreatedAt), formatTime(j.FinishedAt), j.Error,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Type", "Trigger", "Status", "Stage", "Attempts", "Created", "Finished", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
}
