package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if !a.Cfg.Database.AutoMigrate {
				return fmt.Errorf("migrate: DB_AUTO_MIGRATE is disabled")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date")
			return nil
		},
	}
}

func newOptimizationCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newKillCommand(ctx),
		newScaleCommand(ctx),
		newCycleCommand(ctx),
		newRecommendCommand(ctx),
		newRankCommand(ctx),
		newAnalyzeCommand(ctx),
	}
}

func newKillCommand(ctx *commandContext) *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "kill",
		Short: "Archive active products whose ROI is below the threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			res, err := a.Services.Optimization.KillLowPerformers(cmd.Context(), threshold)
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), res, func(out io.Writer) { printKillResult(out, res) })
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", optimization.DefaultKillThreshold, "ROI below which a product is archived")
	return cmd
}

func newScaleCommand(ctx *commandContext) *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Raise production for products whose ROI exceeds the threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			res, err := a.Services.Optimization.ScaleWinners(cmd.Context(), threshold)
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), res, func(out io.Writer) { printScaleResult(out, res) })
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", optimization.DefaultScaleThreshold, "ROI above which a product is scaled")
	return cmd
}

func newCycleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Run one kill pass and one scale pass with configured thresholds",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			res, err := a.Services.Optimization.RunCycle(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), res, func(out io.Writer) {
				printKillResult(out, res.Kill)
				printScaleResult(out, res.Scale)
			})
		},
	}
}

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Show scale recommendations without applying them",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			recs, err := a.Services.Optimization.ScaleRecommendations(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), recs, func(out io.Writer) {
				if len(recs) == 0 {
					fmt.Fprintln(out, "No recommendations")
					return
				}
				rows := make([][]string, 0, len(recs))
				for _, r := range recs {
					rows = append(rows, []string{
						r.ProductTitle,
						string(r.Action),
						formatFloat(r.ROI),
						strconv.Itoa(r.CurrentVideos),
						strconv.Itoa(r.RecommendedVideos),
						formatFloat(r.Multiplier),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Product", "Action", "ROI", "Current", "Recommended", "Multiplier"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
			})
		},
	}
}

func newRankCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Rank active products by recommended action",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			recs, err := a.Services.Optimization.RankProducts(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), recs, func(out io.Writer) { printRecommendations(out, recs) })
		},
	}
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <product-id>",
		Short: "Recommend an action for one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q: %w", args[0], err)
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			rec, err := a.Services.Optimization.AnalyzeProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), rec, func(out io.Writer) {
				printRecommendations(out, []optimization.Recommendation{*rec})
			})
		},
	}
}

func printKillResult(out io.Writer, res *optimization.KillResult) {
	if res == nil {
		return
	}
	fmt.Fprintf(out, "Killed: %d (evaluated %d, skipped %d, protected %d, failed %d)\n",
		res.Killed, res.Evaluated, res.Skipped, res.Protected, res.Failed)
	for _, title := range res.Products {
		fmt.Fprintf(out, "  - %s\n", title)
	}
	printFailures(out, res.Failures)
}

func printScaleResult(out io.Writer, res *optimization.ScaleResult) {
	if res == nil {
		return
	}
	fmt.Fprintf(out, "Scaled: %d (evaluated %d, skipped %d, failed %d)\n",
		res.Scaled, res.Evaluated, res.Skipped, res.Failed)
	if len(res.Products) > 0 {
		rows := make([][]string, 0, len(res.Products))
		for _, p := range res.Products {
			rows = append(rows, []string{p.Title, formatFloat(p.ROI), formatFloat(p.Multiplier), formatFloat(p.VideosPerWeek)})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Product", "ROI", "Multiplier", "Videos/week"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
		))
	}
	printFailures(out, res.Failures)
}

func printFailures(out io.Writer, failures []optimization.EntityFailure) {
	for _, f := range failures {
		fmt.Fprintf(out, "  ! %s (%s): %s\n", f.Title, f.ProductID, f.Error)
	}
}

func printRecommendations(out io.Writer, recs []optimization.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintln(out, "No active products")
		return
	}
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			strconv.Itoa(r.Priority),
			r.ProductTitle,
			string(r.Action),
			formatFloat(r.Metrics.ROI),
			formatFloat(r.Metrics.Revenue),
			string(r.Metrics.Trend),
			r.Reason,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Priority", "Product", "Action", "ROI", "Revenue", "Trend", "Reason"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))
}
