package optimizer

import (
	"fmt"
	"math"

	"github.com/guimove/trainfit/internal/knapsack"
	"github.com/guimove/trainfit/internal/model"
)

// carrierRec is a carrier with weight and volume scaled to table columns.
type carrierRec struct {
	src    model.Carrier
	weight int
	volume int
}

// unitRec is a unit with weight and volume scaled to table columns.
type unitRec struct {
	src    model.Unit
	weight int
	volume int
}

// integralTolerance absorbs float noise such as 0.1*10 = 1.0000000000000002.
const integralTolerance = 1e-6

type quantizer struct {
	resolution float64
	max        int
}

func (q quantizer) scale(v float64, what string, id int64) (int, error) {
	return q.columns(v, fmt.Sprintf("%s %v of id %d", what, v, id))
}

// columns converts v to table columns. subject names v in errors.
func (q quantizer) columns(v float64, subject string) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidInput, subject)
	}
	s := v * q.resolution
	r := math.Round(s)
	if math.Abs(s-r) > integralTolerance {
		return 0, fmt.Errorf("%w: %s is not a multiple of 1/%g",
			ErrCapacityOverflow, subject, q.resolution)
	}
	if r > float64(q.max) {
		return 0, fmt.Errorf("%w: %s exceeds %d columns",
			ErrCapacityOverflow, subject, q.max)
	}
	return int(r), nil
}

func (q quantizer) carriers(in []model.Carrier) ([]carrierRec, error) {
	seen := make(map[int64]struct{}, len(in))
	out := make([]carrierRec, len(in))
	for i, c := range in {
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate carrier id %d", ErrInvalidInput, c.ID)
		}
		seen[c.ID] = struct{}{}

		if math.IsNaN(c.Cost) || math.IsInf(c.Cost, 0) || c.Cost < 0 {
			return nil, fmt.Errorf("%w: cost %v of carrier %d", ErrInvalidInput, c.Cost, c.ID)
		}
		w, err := q.scale(c.WeightCapacity, "weight capacity", c.ID)
		if err != nil {
			return nil, err
		}
		v, err := q.scale(c.VolumeCapacity, "volume capacity", c.ID)
		if err != nil {
			return nil, err
		}
		out[i] = carrierRec{src: c, weight: w, volume: v}
	}
	return out, nil
}

func (q quantizer) units(in []model.Unit) ([]unitRec, error) {
	seen := make(map[int64]struct{}, len(in))
	out := make([]unitRec, len(in))
	for i, u := range in {
		if _, dup := seen[u.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate unit id %d", ErrInvalidInput, u.ID)
		}
		seen[u.ID] = struct{}{}

		w, err := q.scale(u.Weight, "weight", u.ID)
		if err != nil {
			return nil, err
		}
		v, err := q.scale(u.Volume, "volume", u.ID)
		if err != nil {
			return nil, err
		}
		out[i] = unitRec{src: u, weight: w, volume: v}
	}
	return out, nil
}

// buildBounded builds a table after checking it fits the cell budget.
func buildBounded(obj knapsack.Objective, items []knapsack.Item, maxCells int) (*knapsack.Table, error) {
	if cells := knapsack.Cells(items); maxCells > 0 && cells > maxCells {
		return nil, fmt.Errorf("%w: %s table needs %d cells, limit is %d",
			ErrCapacityOverflow, obj, cells, maxCells)
	}
	return knapsack.Build(obj, items)
}
