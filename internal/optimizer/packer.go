package optimizer

import (
	"fmt"

	"github.com/guimove/trainfit/internal/knapsack"
)

// ParcelPacker chooses which units of a pool go on one carrier, maximizing
// packed volume within the carrier's weight capacity.
type ParcelPacker struct {
	MaxTableCells int

	// EnforceVolume re-packs by volume when the weight-bounded optimum
	// overflows the carrier's volume capacity.
	EnforceVolume bool
}

// Pack returns indices into pool of the units placed on c.
func (p ParcelPacker) Pack(c carrierRec, pool []unitRec) ([]int, error) {
	if len(pool) == 0 {
		return nil, nil
	}

	var sumWeight, sumVolume int
	for i := range pool {
		sumWeight += pool[i].weight
		sumVolume += pool[i].volume
	}

	// Whole pool fits.
	if sumWeight <= c.weight && sumVolume <= c.volume {
		all := make([]int, len(pool))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	items := make([]knapsack.Item, len(pool))
	for i := range pool {
		items[i] = knapsack.Item{Weight: pool[i].weight, Value: float64(pool[i].volume)}
	}
	table, err := buildBounded(knapsack.Maximize, items, p.MaxTableCells)
	if err != nil {
		return nil, fmt.Errorf("building packing table for carrier %d: %w", c.src.ID, err)
	}

	col := min(c.weight, table.Bound())
	picked := table.Reconstruct(col)

	if p.EnforceVolume && volumeOf(pool, picked) > c.volume {
		return p.packByVolume(c, pool)
	}
	return picked, nil
}

// packByVolume finds the largest volume not above the carrier's volume
// capacity that some subset reaches within its weight capacity.
func (p ParcelPacker) packByVolume(c carrierRec, pool []unitRec) ([]int, error) {
	items := make([]knapsack.Item, len(pool))
	for i := range pool {
		items[i] = knapsack.Item{Weight: pool[i].volume, Value: float64(pool[i].weight)}
	}
	table, err := buildBounded(knapsack.MinimizeExact, items, p.MaxTableCells)
	if err != nil {
		return nil, fmt.Errorf("building volume table for carrier %d: %w", c.src.ID, err)
	}

	for v := min(c.volume, table.Bound()); v > 0; v-- {
		if table.Reachable(v) && table.Best(v) <= float64(c.weight) {
			return table.Reconstruct(v), nil
		}
	}
	return nil, nil
}

func volumeOf(pool []unitRec, picked []int) int {
	total := 0
	for _, idx := range picked {
		total += pool[idx].volume
	}
	return total
}
