package report

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/guimove/trainfit/internal/model"
	"github.com/guimove/trainfit/internal/optimizer"
)

// MarkdownReporter outputs results as GitHub-flavored markdown.
type MarkdownReporter struct {
	w io.Writer
}

func (r *MarkdownReporter) header(title string, meta Meta) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "- **Source:** %s\n", meta.Source)
	if !meta.CollectedAt.IsZero() {
		fmt.Fprintf(r.w, "- **Collected:** %s\n", meta.CollectedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if meta.Strategy != "" {
		fmt.Fprintf(r.w, "- **Strategy:** %s\n", meta.Strategy)
	}
	fmt.Fprintf(r.w, "- **Trains:** %s\n", humanize.Comma(int64(meta.Carriers)))
	fmt.Fprintf(r.w, "- **Parcels:** %s (weight %s, volume %s)\n\n",
		humanize.Comma(int64(meta.Units)), humanize.Commaf(meta.TotalWeight), humanize.Commaf(meta.TotalVolume))
}

func (r *MarkdownReporter) Report(ctx context.Context, res *model.Result, meta Meta) error {
	r.header("Trainfit Assignment", meta)

	if res == nil || len(res.Loads) == 0 {
		fmt.Fprintf(r.w, "No parcels assigned.\n")
		return nil
	}

	fmt.Fprintf(r.w, "| Train | Parcels | Weight | Weight %% | Volume | Volume %% | Cost |\n")
	fmt.Fprintf(r.w, "|------:|--------:|-------:|---------:|-------:|---------:|-----:|\n")
	for _, l := range res.Loads {
		fmt.Fprintf(r.w, "| %d | %s | %s | %.1f%% | %s | %.1f%% | %s |\n",
			l.CarrierID,
			formatIDs(l.UnitIDs),
			humanize.Commaf(l.Weight),
			l.WeightUtilization()*100,
			humanize.Commaf(l.Volume),
			l.VolumeUtilization()*100,
			humanize.Commaf(l.Cost),
		)
	}

	lr := loadReport(res)
	fmt.Fprintf(r.w, "\n**Total cost:** %s  \n", humanize.Commaf(res.TotalCost))
	fmt.Fprintf(r.w, "**Balance score:** %.2f  \n", lr.BalanceScore)

	if len(res.Unassigned) > 0 {
		fmt.Fprintf(r.w, "**Unassigned:** %s\n", formatIDs(res.Unassigned))
	}
	for _, w := range optimizer.LoadWarnings(res, lr) {
		fmt.Fprintf(r.w, "\n> **Warning:** %s\n", w)
	}
	return nil
}

func (r *MarkdownReporter) ReportComparison(ctx context.Context, cmps []model.Comparison, meta Meta) error {
	r.header("Trainfit What-If Comparison", meta)

	fmt.Fprintf(r.w, "| Rank | Scenario | Trains | Parcels | Weight %% | Volume %% | Cost | vs Baseline |\n")
	fmt.Fprintf(r.w, "|-----:|----------|-------:|--------:|---------:|---------:|-----:|------------:|\n")
	for i, c := range cmps {
		if c.Result == nil {
			fmt.Fprintf(r.w, "| %d | %s | - | - | - | - | - | failed: %s |\n", i+1, c.Name, c.Err)
			continue
		}
		fmt.Fprintf(r.w, "| %d | %s | %d | %d | %.1f%% | %.1f%% | %s | %+.1f%% |\n",
			i+1,
			c.Name,
			len(c.Result.Loads),
			c.Result.AssignedCount(),
			c.Loads.AvgWeightUtilization*100,
			c.Loads.AvgVolumeUtilization*100,
			humanize.Commaf(c.Result.TotalCost),
			c.CostVsBaseline,
		)
	}
	return nil
}
