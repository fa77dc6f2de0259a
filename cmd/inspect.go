package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/guimove/trainfit/internal/orchestrator"
	"github.com/guimove/trainfit/internal/report"
	"github.com/guimove/trainfit/internal/snapshot"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Display the trains and parcels the next fill would see",
	Long: `Loads the current snapshot from the configured database: trains that are
neither ready nor booked, and parcels not yet linked to a train. The JSON
output can be fed to 'trainfit assign'. With --plan the assignment a fill
would make is shown without persisting it.`,
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.String("output", "table", "output format: table, json")
	f.Bool("plan", false, "also compute the assignment without persisting it")
	f.String("output-file", "", "write output to file")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	outputFmt, _ := cmd.Flags().GetString("output")
	plan, _ := cmd.Flags().GetBool("plan")

	w := os.Stdout
	if outFile, _ := cmd.Flags().GetString("output-file"); outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	return withService(ctx, func(orch *orchestrator.Orchestrator) error {
		src := snapshot.NewStoreSource(orch.Store)
		if err := src.Ping(ctx); err != nil {
			return err
		}

		if plan {
			snap, res, err := orch.Plan(ctx, src)
			if err != nil {
				return err
			}
			return report.NewReporter(outputFmt, w).Report(ctx, res, report.MetaFromSnapshot(snap, src.BackendType(), orch.Optimizer.Name()))
		}

		snap, err := src.Load(ctx)
		if err != nil {
			return err
		}
		if outputFmt == "json" {
			return writeJSON(w, snap)
		}

		// Table output
		fmt.Fprintf(w, "Backend: %s\n", src.BackendType())
		fmt.Fprintf(w, "Trains: %d | Parcels: %d\n\n", len(snap.Carriers), len(snap.Units))

		fmt.Fprintf(w, "%-8s %12s %12s %10s\n", "TRAIN", "WEIGHT", "VOLUME", "COST")
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 45))
		for _, c := range snap.Carriers {
			fmt.Fprintf(w, "%-8d %12s %12s %10s\n",
				c.ID, humanize.Commaf(c.WeightCapacity), humanize.Commaf(c.VolumeCapacity), humanize.Commaf(c.Cost))
		}

		fmt.Fprintf(w, "\n%-8s %12s %12s\n", "PARCEL", "WEIGHT", "VOLUME")
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 34))
		for _, u := range snap.Units {
			fmt.Fprintf(w, "%-8d %12s %12s\n", u.ID, humanize.Commaf(u.Weight), humanize.Commaf(u.Volume))
		}

		capW, capV := snap.TotalCapacity()
		fmt.Fprintf(w, "\nDemand:   weight=%s volume=%s\n", humanize.Commaf(snap.TotalWeight()), humanize.Commaf(snap.TotalVolume()))
		fmt.Fprintf(w, "Capacity: weight=%s volume=%s\n", humanize.Commaf(capW), humanize.Commaf(capV))
		return nil
	})
}
