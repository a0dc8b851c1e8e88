package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
)

func newPromptsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Inspect and evolve prompt versions",
	}
	cmd.AddCommand(newPromptsListCommand(ctx))
	cmd.AddCommand(newPromptsOptimizeCommand(ctx))
	cmd.AddCommand(newPromptsTrackCommand(ctx))
	cmd.AddCommand(newPromptsPerformanceCommand(ctx))
	return cmd
}

func newPromptsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List prompt versions, seeding the baseline when none exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			versions, err := app.Services.Optimization.PromptVersions(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), versions, func(out io.Writer) { printPromptVersions(out, versions) })
		},
	}
}

func newPromptsOptimizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Derive a new prompt version from the best performer",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			res, err := app.Services.Optimization.OptimizePrompts(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), res, func(out io.Writer) {
				switch {
				case res.NewVersion != nil && res.BestVersion != nil:
					fmt.Fprintf(out, "Created %s from %s (improvement %s)\n",
						res.NewVersion.ID, res.BestVersion.ID, formatPercent(res.Improvement))
				case res.Created > 0:
					fmt.Fprintf(out, "Seeded %d baseline version(s)\n", res.Created)
				default:
					fmt.Fprintln(out, "No new version created")
				}
			})
		},
	}
}

func newPromptsTrackCommand(ctx *commandContext) *cobra.Command {
	var sample optimization.UsageSample
	cmd := &cobra.Command{
		Use:   "track <version-id>",
		Short: "Fold one usage sample into a version's running averages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			tracked, err := app.Services.Optimization.TrackUsage(cmd.Context(), args[0], sample)
			if err != nil {
				return err
			}
			out := map[string]bool{"tracked": tracked}
			return emit(ctx, cmd.OutOrStdout(), out, func(w io.Writer) {
				if tracked {
					fmt.Fprintf(w, "Tracked usage for %s\n", args[0])
				} else {
					fmt.Fprintf(w, "Version %s not found; nothing tracked\n", args[0])
				}
			})
		},
	}
	cmd.Flags().Float64Var(&sample.CTR, "ctr", 0, "Observed click-through rate")
	cmd.Flags().Float64Var(&sample.Conversions, "conversions", 0, "Observed conversions")
	cmd.Flags().Float64Var(&sample.Revenue, "revenue", 0, "Observed revenue")
	return cmd
}

func newPromptsPerformanceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "performance",
		Short: "Summarize prompt versions by average CTR",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			sum, err := app.Services.Optimization.PromptPerformance(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), sum, func(out io.Writer) {
				fmt.Fprintf(out, "Versions: %d\n", sum.Total)
				if sum.Best != nil {
					fmt.Fprintf(out, "Best:  %s (avg CTR %s)\n", sum.Best.ID, formatFloat(sum.Best.Performance.AvgCTR))
				}
				if sum.Worst != nil {
					fmt.Fprintf(out, "Worst: %s (avg CTR %s)\n", sum.Worst.ID, formatFloat(sum.Worst.Performance.AvgCTR))
				}
				printPromptVersions(out, sum.Versions)
			})
		},
	}
}

func printPromptVersions(out io.Writer, versions []optimization.PromptVersion) {
	if len(versions) == 0 {
		fmt.Fprintln(out, "No prompt versions")
		return
	}
	rows := make([][]string, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, []string{
			v.ID,
			strconv.Itoa(v.Version),
			strconv.Itoa(v.Performance.Uses),
			formatFloat(v.Performance.AvgCTR),
			formatFloat(v.Performance.AvgConversions),
			formatFloat(v.Performance.AvgRevenue),
			formatTime(&v.CreatedAt),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Version", "Uses", "Avg CTR", "Avg Conv", "Avg Revenue", "Created"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
}
