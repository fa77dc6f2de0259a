package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/guimove/trainfit/internal/model"
)

// JSONReporter outputs results as JSON.
type JSONReporter struct {
	w io.Writer
}

type jsonOutput struct {
	Meta        Meta               `json:"meta"`
	Result      *model.Result      `json:"result,omitempty"`
	LoadReport  *model.LoadReport  `json:"load_report,omitempty"`
	Comparisons []model.Comparison `json:"comparisons,omitempty"`
}

func (r *JSONReporter) Report(ctx context.Context, res *model.Result, meta Meta) error {
	lr := loadReport(res)
	return r.encode(jsonOutput{Meta: meta, Result: res, LoadReport: &lr})
}

func (r *JSONReporter) ReportComparison(ctx context.Context, cmps []model.Comparison, meta Meta) error {
	return r.encode(jsonOutput{Meta: meta, Comparisons: cmps})
}

func (r *JSONReporter) encode(v jsonOutput) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
