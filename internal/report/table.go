package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/guimove/trainfit/internal/model"
	"github.com/guimove/trainfit/internal/optimizer"
)

// TableReporter outputs results as a formatted terminal table.
type TableReporter struct {
	w io.Writer
}

func (r *TableReporter) header(title string, meta Meta) {
	fmt.Fprintf(r.w, "\n")
	fmt.Fprintf(r.w, "%s\n", title)
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(r.w, "Source:      %s\n", meta.Source)
	if !meta.CollectedAt.IsZero() {
		fmt.Fprintf(r.w, "Collected:   %s (%s)\n",
			meta.CollectedAt.Format("2006-01-02 15:04:05"), humanize.Time(meta.CollectedAt))
	}
	if meta.Strategy != "" {
		fmt.Fprintf(r.w, "Strategy:    %s\n", meta.Strategy)
	}
	fmt.Fprintf(r.w, "Trains:      %s\n", humanize.Comma(int64(meta.Carriers)))
	fmt.Fprintf(r.w, "Parcels:     %s (weight %s, volume %s)\n",
		humanize.Comma(int64(meta.Units)), humanize.Commaf(meta.TotalWeight), humanize.Commaf(meta.TotalVolume))
	fmt.Fprintf(r.w, "%s\n\n", strings.Repeat("=", 60))
}

func (r *TableReporter) Report(ctx context.Context, res *model.Result, meta Meta) error {
	r.header("Trainfit Assignment", meta)

	if res == nil || len(res.Loads) == 0 {
		fmt.Fprintf(r.w, "No parcels assigned.\n")
		if res != nil && len(res.Unassigned) > 0 {
			fmt.Fprintf(r.w, "Unassigned:  %s\n", formatIDs(res.Unassigned))
		}
		fmt.Fprintf(r.w, "\n")
		return nil
	}

	fmt.Fprintf(r.w, "%-8s %8s %12s %7s %12s %7s %10s  %s\n",
		"Train", "Parcels", "Weight", "W%", "Volume", "V%", "Cost", "Parcel IDs")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 100))

	for _, l := range res.Loads {
		fmt.Fprintf(r.w, "%-8d %8d %12s %6.1f%% %12s %6.1f%% %10s  %s\n",
			l.CarrierID,
			len(l.UnitIDs),
			humanize.Commaf(l.Weight),
			l.WeightUtilization()*100,
			humanize.Commaf(l.Volume),
			l.VolumeUtilization()*100,
			humanize.Commaf(l.Cost),
			truncate(formatIDs(l.UnitIDs), 40),
		)
	}
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 100))

	lr := loadReport(res)
	fmt.Fprintf(r.w, "\nTotal cost:     %s\n", humanize.Commaf(res.TotalCost))
	fmt.Fprintf(r.w, "  Assigned:       %s parcels on %d trains\n", humanize.Comma(int64(res.AssignedCount())), len(res.Loads))
	fmt.Fprintf(r.w, "  Weight util:    %.1f%%\n", lr.AvgWeightUtilization*100)
	fmt.Fprintf(r.w, "  Volume util:    %.1f%%\n", lr.AvgVolumeUtilization*100)
	fmt.Fprintf(r.w, "  Balance score:  %.2f\n", lr.BalanceScore)

	if len(res.Unassigned) > 0 {
		fmt.Fprintf(r.w, "  Unassigned:     %s\n", truncate(formatIDs(res.Unassigned), 60))
	}

	if warnings := optimizer.LoadWarnings(res, lr); len(warnings) > 0 {
		fmt.Fprintf(r.w, "\n  Warnings:\n")
		for _, w := range warnings {
			fmt.Fprintf(r.w, "    - %s\n", w)
		}
	}

	fmt.Fprintf(r.w, "\n")
	return nil
}

func (r *TableReporter) ReportComparison(ctx context.Context, cmps []model.Comparison, meta Meta) error {
	r.header("Trainfit What-If Comparison", meta)

	if len(cmps) == 0 {
		fmt.Fprintf(r.w, "No scenarios ran.\n")
		return nil
	}

	fmt.Fprintf(r.w, "%-4s %-28s %6s %8s %7s %7s %10s %s\n",
		"Rank", "Scenario", "Trains", "Parcels", "W%", "V%", "Cost", "Notes")
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 100))

	for i, c := range cmps {
		if c.Result == nil {
			fmt.Fprintf(r.w, "#%-3d %-28s %6s %8s %7s %7s %10s failed: %s\n",
				i+1, truncate(c.Name, 28), "-", "-", "-", "-", "-", c.Err)
			continue
		}
		notes := ""
		if c.CostVsBaseline < 0 {
			notes = fmt.Sprintf("%.1f%% savings", -c.CostVsBaseline)
		} else if c.CostVsBaseline > 0 {
			notes = fmt.Sprintf("+%.1f%% cost", c.CostVsBaseline)
		}
		if n := len(c.Result.Unassigned); n > 0 {
			notes += fmt.Sprintf(" [%d unassigned]", n)
		}
		fmt.Fprintf(r.w, "#%-3d %-28s %6d %8d %6.1f%% %6.1f%% %10s %s\n",
			i+1,
			truncate(c.Name, 28),
			len(c.Result.Loads),
			c.Result.AssignedCount(),
			c.Loads.AvgWeightUtilization*100,
			c.Loads.AvgVolumeUtilization*100,
			humanize.Commaf(c.Result.TotalCost),
			strings.TrimSpace(notes),
		)
	}
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("-", 100))

	best, worst := cmps[0], cmps[0]
	for _, c := range cmps {
		if c.Result != nil {
			worst = c
		}
	}
	if best.Result != nil && worst.Result.TotalCost > best.Result.TotalCost {
		fmt.Fprintf(r.w, "\nBest option (%s) saves %s vs worst (%s)\n",
			best.Name, humanize.Commaf(worst.Result.TotalCost-best.Result.TotalCost), worst.Name)
	}
	if len(best.Warnings) > 0 {
		fmt.Fprintf(r.w, "\n  Warnings for %s:\n", best.Name)
		for _, w := range best.Warnings {
			fmt.Fprintf(r.w, "    - %s\n", w)
		}
	}
	fmt.Fprintf(r.w, "\n")
	return nil
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
