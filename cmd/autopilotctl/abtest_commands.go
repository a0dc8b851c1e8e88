package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
)

func newABTestCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abtest",
		Short: "Create and analyze A/B tests",
	}
	cmd.AddCommand(newABTestCreateCommand(ctx))
	cmd.AddCommand(newABTestCommonCommand(ctx))
	cmd.AddCommand(newABTestAnalyzeCommand(ctx))
	cmd.AddCommand(newABTestResultsCommand(ctx))
	cmd.AddCommand(newABTestEventCommand(ctx))
	return cmd
}

func newABTestCreateCommand(ctx *commandContext) *cobra.Command {
	var name, metric, variantA, variantB string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a running A/B test",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := optimization.ParseMetric(metric)
			if err != nil {
				return err
			}
			a, b, err := parseVariants(variantA, variantB)
			if err != nil {
				return err
			}
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			test, err := app.Services.Optimization.CreateTest(cmd.Context(), optimization.CreateTestInput{
				Name: name, VariantA: a, VariantB: b, Metric: m,
			})
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), test, func(out io.Writer) {
				fmt.Fprintf(out, "Created test %s (%s, metric %s)\n", test.ID, test.Name, test.Metric)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Test name")
	cmd.Flags().StringVar(&metric, "metric", string(optimization.MetricCTR), "Deciding metric: ctr, conversions or views")
	cmd.Flags().StringVar(&variantA, "variant-a", "{}", "Variant A configuration as a JSON object")
	cmd.Flags().StringVar(&variantB, "variant-b", "{}", "Variant B configuration as a JSON object")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func parseVariants(rawA, rawB string) (map[string]interface{}, map[string]interface{}, error) {
	var a, b map[string]interface{}
	if err := json.Unmarshal([]byte(rawA), &a); err != nil {
		return nil, nil, fmt.Errorf("--variant-a: %w", err)
	}
	if err := json.Unmarshal([]byte(rawB), &b); err != nil {
		return nil, nil, fmt.Errorf("--variant-b: %w", err)
	}
	return a, b, nil
}

func newABTestCommonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "common",
		Short: "Create the standard voice, CTA, length and thumbnail tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			res, err := app.Services.Optimization.CreateCommonTests(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), res, func(out io.Writer) {
				fmt.Fprintf(out, "Created %d tests\n", res.Created)
				printTests(out, res.Tests)
			})
		},
	}
}

func newABTestAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Analyze running tests and complete those with a confident winner",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			res, err := app.Services.Optimization.AnalyzeTests(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), res, func(out io.Writer) {
				fmt.Fprintf(out, "Analyzed %d, completed %d, failed %d\n", res.Analyzed, res.Completed, res.Failed)
				if len(res.Results) == 0 {
					return
				}
				rows := make([][]string, 0, len(res.Results))
				for _, r := range res.Results {
					rows = append(rows, []string{
						r.Name, string(r.Metric), r.Status, r.Results.Winner,
						formatPercent(r.Results.Confidence), r.Results.Recommendation,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Test", "Metric", "Status", "Winner", "Confidence", "Recommendation"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
			})
		},
	}
}

func newABTestResultsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "List every test with its outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			sum, err := app.Services.Optimization.TestResults(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd.OutOrStdout(), sum, func(out io.Writer) {
				fmt.Fprintf(out, "Total %d, running %d, completed %d\n", sum.Total, sum.Running, sum.Completed)
				printTests(out, sum.Tests)
			})
		},
	}
}

func newABTestEventCommand(ctx *commandContext) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "event <test-id> <A|B> <exposure|click|conversion|view>",
		Short: "Record observed events for one variant",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			for i := 0; i < count; i++ {
				if err := app.Services.Optimization.RecordEvent(cmd.Context(), args[0], args[1], args[2]); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d %s event(s) for variant %s\n", count, args[2], args[1])
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 1, "Number of events to record")
	return cmd
}

func printTests(out io.Writer, tests []optimization.ABTest) {
	if len(tests) == 0 {
		return
	}
	rows := make([][]string, 0, len(tests))
	for _, t := range tests {
		winner, confidence := "-", "-"
		if t.Results != nil {
			winner = t.Results.Winner
			confidence = formatPercent(t.Results.Confidence)
		}
		rows = append(rows, []string{
			t.ID, t.Name, string(t.Metric), t.Status, winner, confidence,
			formatTime(&t.CreatedAt), formatTime(t.CompletedAt),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Name", "Metric", "Status", "Winner", "Confidence", "Created", "Completed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
}
