package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guimove/trainfit/internal/optimizer"
	"github.com/guimove/trainfit/internal/report"
	"github.com/guimove/trainfit/internal/snapshot"
)

var whatifCmd = &cobra.Command{
	Use:   "what-if",
	Short: "Compare optimizer variants on the same snapshot",
	Long: `Runs the knapsack optimizer with and without volume repair, at the
configured and at finer resolutions, next to a best-fit-decreasing
baseline, and ranks them by total cost.

Example:
  trainfit what-if --input snapshot.json --resolutions 1,10`,
	RunE: runWhatIf,
}

func init() {
	f := whatifCmd.Flags()
	f.String("input", "", "path to snapshot file (required)")
	f.Float64Slice("resolutions", nil, "extra quantization resolutions to try")
	f.Int("parallelism", 0, "scenarios run at once (0 = number of CPUs)")
	f.String("output", "table", "output format: table, json, markdown")

	_ = whatifCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(whatifCmd)
}

func runWhatIf(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if f, _ := cmd.Flags().GetString("output"); cmd.Flags().Changed("output") {
		cfg.Output.Format = f
	}

	inputPath, _ := cmd.Flags().GetString("input")
	src := snapshot.NewFileSource(inputPath)
	snap, err := src.Load(ctx)
	if err != nil {
		return err
	}

	resolutions, _ := cmd.Flags().GetFloat64Slice("resolutions")
	scenarios, err := whatIfScenarios(cfg.Optimizer.Options(), resolutions)
	if err != nil {
		return err
	}
	logger.Info().Int("scenarios", len(scenarios)).Int("units", len(snap.Units)).Msg("running what-if comparison")

	parallelism, _ := cmd.Flags().GetInt("parallelism")
	cmps, err := optimizer.Compare(ctx, snap, scenarios, parallelism)
	if err != nil {
		return err
	}

	reporter := report.NewReporter(cfg.Output.Format, os.Stdout)
	return reporter.ReportComparison(ctx, cmps, report.MetaFromSnapshot(snap, src.BackendType(), "what-if"))
}

// whatIfScenarios lists the baseline first so costs are reported against it.
func whatIfScenarios(base optimizer.Options, resolutions []float64) ([]optimizer.Scenario, error) {
	scenarios := []optimizer.Scenario{
		{Name: "best-fit-decreasing", Strategy: &optimizer.Greedy{}},
	}

	add := func(name string, opts optimizer.Options) error {
		if err := opts.Validate(); err != nil {
			return fmt.Errorf("scenario %s: %w", name, err)
		}
		scenarios = append(scenarios, optimizer.Scenario{Name: name, Strategy: optimizer.New(opts)})
		return nil
	}

	withRepair, weightOnly := base, base
	withRepair.EnforceVolume = true
	weightOnly.EnforceVolume = false
	if err := add(fmt.Sprintf("knapsack (res %g)", base.Resolution), withRepair); err != nil {
		return nil, err
	}
	if err := add(fmt.Sprintf("knapsack weight-only (res %g)", base.Resolution), weightOnly); err != nil {
		return nil, err
	}

	for _, r := range resolutions {
		if r == base.Resolution {
			continue
		}
		opts := withRepair
		opts.Resolution = r
		if err := add(fmt.Sprintf("knapsack (res %g)", r), opts); err != nil {
			return nil, err
		}
	}
	return scenarios, nil
}
