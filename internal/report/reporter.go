// Package report renders optimization results for humans and machines.
package report

import (
	"context"
	"io"
	"time"

	"github.com/guimove/trainfit/internal/model"
	"github.com/guimove/trainfit/internal/optimizer"
)

// Reporter formats and writes results to an output destination.
type Reporter interface {
	Report(ctx context.Context, res *model.Result, meta Meta) error
	ReportComparison(ctx context.Context, cmps []model.Comparison, meta Meta) error
}

// Meta contains contextual metadata for the report.
type Meta struct {
	Source      string    `json:"source"`
	CollectedAt time.Time `json:"collected_at,omitempty"`
	Strategy    string    `json:"strategy,omitempty"`

	Carriers    int     `json:"carriers"`
	Units       int     `json:"units"`
	TotalWeight float64 `json:"total_weight"`
	TotalVolume float64 `json:"total_volume"`
}

// MetaFromSnapshot fills the snapshot-derived fields of a Meta.
func MetaFromSnapshot(snap model.Snapshot, source, strategy string) Meta {
	return Meta{
		Source:      source,
		CollectedAt: snap.CollectedAt,
		Strategy:    strategy,
		Carriers:    len(snap.Carriers),
		Units:       len(snap.Units),
		TotalWeight: snap.TotalWeight(),
		TotalVolume: snap.TotalVolume(),
	}
}

// NewReporter creates a reporter for the given format writing to w.
func NewReporter(format string, w io.Writer) Reporter {
	switch format {
	case "json":
		return &JSONReporter{w: w}
	case "markdown":
		return &MarkdownReporter{w: w}
	default:
		return &TableReporter{w: w}
	}
}

func loadReport(res *model.Result) model.LoadReport {
	if res == nil {
		return optimizer.AnalyzeLoads(nil)
	}
	return optimizer.AnalyzeLoads(res.Loads)
}
