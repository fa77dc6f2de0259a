// Package knapsack implements the 0/1 knapsack tables shared by carrier
// selection and parcel packing.
package knapsack

import (
	"errors"
	"fmt"
	"math"
)

// Objective selects the recurrence a table is built with.
type Objective int

const (
	// Maximize finds the largest total value whose weight fits in w.
	Maximize Objective = iota
	// MinimizeCover finds the smallest total value whose weight is at least w.
	MinimizeCover
	// MinimizeExact finds the smallest total value whose weight is exactly w.
	MinimizeExact
)

// String returns the objective name.
func (o Objective) String() string {
	switch o {
	case Maximize:
		return "maximize"
	case MinimizeCover:
		return "minimize-cover"
	case MinimizeExact:
		return "minimize-exact"
	default:
		return fmt.Sprintf("objective(%d)", int(o))
	}
}

// ErrNegativeWeight is returned when an item weight cannot index a column.
var ErrNegativeWeight = errors.New("knapsack: item weight must be non-negative")

// Item is one candidate in a knapsack. Weight indexes table columns; Value is
// the quantity being maximized or minimized.
type Item struct {
	Weight int
	Value  float64
}

// Table holds T[i][w] for i in [0, n] and w in [0, bound], where bound is the
// sum of all item weights.
type Table struct {
	objective Objective
	items     []Item
	bound     int
	cells     [][]float64
}

// Bound returns the sum of item weights, the last valid column.
func Bound(items []Item) int {
	total := 0
	for i := range items {
		total += items[i].Weight
	}
	return total
}

// Cells returns how many cells a table over items would allocate.
func Cells(items []Item) int {
	return (len(items) + 1) * (Bound(items) + 1)
}

// Build fills a table for items under the given objective.
func Build(objective Objective, items []Item) (*Table, error) {
	for i := range items {
		if items[i].Weight < 0 {
			return nil, fmt.Errorf("%w: item %d has weight %d", ErrNegativeWeight, i, items[i].Weight)
		}
	}

	n := len(items)
	bound := Bound(items)
	cells := make([][]float64, n+1)
	backing := make([]float64, (n+1)*(bound+1))
	for i := range cells {
		cells[i], backing = backing[:bound+1:bound+1], backing[bound+1:]
	}

	t := &Table{objective: objective, items: items, bound: bound, cells: cells}

	switch objective {
	case Maximize:
		t.fillMax()
	case MinimizeCover:
		t.fillMinCover()
	case MinimizeExact:
		t.fillMinExact()
	default:
		return nil, fmt.Errorf("knapsack: unknown objective %v", objective)
	}
	return t, nil
}

func (t *Table) fillMax() {
	for i := 1; i <= len(t.items); i++ {
		it := t.items[i-1]
		prev, row := t.cells[i-1], t.cells[i]
		for w := 0; w <= t.bound; w++ {
			if w < it.Weight {
				row[w] = prev[w]
				continue
			}
			row[w] = math.Max(prev[w], prev[w-it.Weight]+it.Value)
		}
	}
}

func (t *Table) fillMinCover() {
	inf := math.Inf(1)
	for w := 0; w <= t.bound; w++ {
		t.cells[0][w] = inf
	}
	for i := 1; i <= len(t.items); i++ {
		it := t.items[i-1]
		prev, row := t.cells[i-1], t.cells[i]
		// Covering nothing is free once at least one item exists.
		row[0] = 0
		for w := 1; w <= t.bound; w++ {
			if w <= it.Weight {
				row[w] = math.Min(prev[w], it.Value)
				continue
			}
			row[w] = math.Min(prev[w], prev[w-it.Weight]+it.Value)
		}
	}
}

func (t *Table) fillMinExact() {
	inf := math.Inf(1)
	for w := 1; w <= t.bound; w++ {
		t.cells[0][w] = inf
	}
	for i := 1; i <= len(t.items); i++ {
		it := t.items[i-1]
		prev, row := t.cells[i-1], t.cells[i]
		for w := 0; w <= t.bound; w++ {
			if w < it.Weight {
				row[w] = prev[w]
				continue
			}
			row[w] = math.Min(prev[w], prev[w-it.Weight]+it.Value)
		}
	}
}

// Objective returns the objective the table was built with.
func (t *Table) Objective() Objective { return t.objective }

// Len returns the number of items.
func (t *Table) Len() int { return len(t.items) }

// Bound returns the last valid column.
func (t *Table) Bound() int { return t.bound }

// At returns T[i][w].
func (t *Table) At(i, w int) float64 { return t.cells[i][w] }

// Best returns T[n][w], the optimum over all items at column w.
func (t *Table) Best(w int) float64 { return t.cells[len(t.items)][w] }

// Reachable reports whether column w has a finite optimum.
func (t *Table) Reachable(w int) bool { return !math.IsInf(t.Best(w), 0) }

// Reconstruct walks the table backwards from T[n][w] and returns the indices
// of the included items, highest index first. Ties resolve toward excluding
// the higher-indexed item. An unreachable column yields nil.
func (t *Table) Reconstruct(w int) []int {
	if w < 0 || w > t.bound || !t.Reachable(w) {
		return nil
	}

	acc := t.Best(w)
	var included []int
	for i := len(t.items); i >= 1; i-- {
		if t.done(acc, w) {
			break
		}
		if t.cells[i][w] == t.cells[i-1][w] {
			continue
		}

		it := t.items[i-1]
		included = append(included, i-1)
		acc -= it.Value
		w -= it.Weight
		if w < 0 {
			// A covering item may exceed the remaining requirement.
			w = 0
		}
	}
	return included
}

// done reports whether nothing is left to attribute to earlier items.
func (t *Table) done(acc float64, w int) bool {
	if t.objective == Maximize {
		return acc <= epsilon
	}
	return w <= 0
}

const epsilon = 1e-9
