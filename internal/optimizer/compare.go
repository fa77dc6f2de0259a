package optimizer

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/guimove/trainfit/internal/model"
)

// Scenario is one strategy run in a what-if comparison.
type Scenario struct {
	Name     string
	Strategy Strategy
}

// Compare runs every scenario against the same snapshot concurrently and
// returns their outcomes ordered by total cost, failed scenarios last.
// CostVsBaseline is relative to the first scenario that succeeded.
func Compare(ctx context.Context, snap model.Snapshot, scenarios []Scenario, parallelism int) ([]model.Comparison, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no what-if scenarios provided")
	}
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	out := make([]model.Comparison, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, sc := range scenarios {
		g.Go(func() error {
			out[i].Name = sc.Name
			res, err := sc.Strategy.Solve(gctx, snap)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				out[i].Err = err.Error()
				return nil
			}
			out[i].Result = res
			out[i].Loads = AnalyzeLoads(res.Loads)
			out[i].Warnings = LoadWarnings(res, out[i].Loads)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var baseline *model.Result
	for i := range out {
		if out[i].Result != nil {
			baseline = out[i].Result
			break
		}
	}
	if baseline == nil {
		return out, fmt.Errorf("all what-if scenarios failed")
	}
	for i := range out {
		if out[i].Result != nil && baseline.TotalCost > 0 {
			out[i].CostVsBaseline = (out[i].Result.TotalCost - baseline.TotalCost) / baseline.TotalCost * 100
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Result, out[j].Result
		if ri == nil || rj == nil {
			return ri != nil
		}
		return ri.TotalCost < rj.TotalCost
	})
	return out, nil
}
