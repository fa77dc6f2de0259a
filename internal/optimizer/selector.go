package optimizer

import (
	"fmt"

	"github.com/guimove/trainfit/internal/knapsack"
)

// CarrierSelector picks the cheapest set of carriers whose weight capacity
// covers the demand, then probes larger weight thresholds until the set also
// covers the volume demand. It is a best-effort heuristic: weight is
// optimized exactly, volume only by probing.
type CarrierSelector struct {
	MaxTableCells int
	// MaxProbes caps distinct thresholds tried. 0 = up to the capacity sum.
	MaxProbes int
}

// Select returns indices into carriers, in reconstruction order.
func (s CarrierSelector) Select(carriers []carrierRec, demandWeight, demandVolume int) ([]int, error) {
	total := 0
	for i := range carriers {
		total += carriers[i].weight
	}

	// Every carrier is needed regardless of cost.
	if total <= demandWeight {
		all := make([]int, len(carriers))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	items := make([]knapsack.Item, len(carriers))
	for i := range carriers {
		items[i] = knapsack.Item{Weight: carriers[i].weight, Value: carriers[i].src.Cost}
	}
	table, err := buildBounded(knapsack.MinimizeCover, items, s.MaxTableCells)
	if err != nil {
		return nil, fmt.Errorf("building selection table: %w", err)
	}

	rejected := make(map[float64]struct{})
	probes := 0
	for w := demandWeight; w <= table.Bound(); w++ {
		// Cover cost only grows with w.
		if !table.Reachable(w) {
			break
		}
		cost := table.Best(w)
		if _, seen := rejected[cost]; seen {
			continue
		}
		if s.MaxProbes > 0 && probes >= s.MaxProbes {
			return nil, fmt.Errorf("%w: probe limit %d reached at weight %d", ErrInfeasible, s.MaxProbes, w)
		}
		probes++

		picked := table.Reconstruct(w)
		volume := 0
		for _, idx := range picked {
			volume += carriers[idx].volume
		}
		if volume >= demandVolume {
			return picked, nil
		}
		rejected[cost] = struct{}{}
	}

	return nil, fmt.Errorf("%w: volume demand %d not met up to weight %d", ErrInfeasible, demandVolume, table.Bound())
}
