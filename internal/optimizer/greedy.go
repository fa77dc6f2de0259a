package optimizer

import (
	"context"
	"math"
	"sort"

	"github.com/guimove/trainfit/internal/model"
)

// Greedy is a best-fit-decreasing baseline. It is fast and capacity-safe but
// makes no cost guarantee; it exists to compare against the knapsack strategy.
type Greedy struct{}

// Name returns the strategy name.
func (g *Greedy) Name() string { return "best-fit-decreasing" }

// openCarrier tracks the current fill of a carrier during greedy placement.
type openCarrier struct {
	carrier         model.Carrier
	units           []model.Unit
	remainingWeight float64
	remainingVolume float64
}

// Solve places units, largest first, on the open carrier they fit tightest.
// When none fits, the cheapest unopened carrier able to hold the unit is
// opened.
func (g *Greedy) Solve(ctx context.Context, snap model.Snapshot) (*model.Result, error) {
	if len(snap.Units) == 0 {
		return model.EmptyResult(), nil
	}

	units := make([]model.Unit, len(snap.Units))
	copy(units, snap.Units)
	sortByDominance(units, snap.Carriers)

	unopened := make([]model.Carrier, len(snap.Carriers))
	copy(unopened, snap.Carriers)
	sort.SliceStable(unopened, func(i, j int) bool {
		return unopened[i].Cost < unopened[j].Cost
	})

	var open []openCarrier
	res := model.EmptyResult()

	for i := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u := &units[i]

		bestIdx := -1
		bestScore := math.MaxFloat64
		for j := range open {
			if !fits(&open[j], u) {
				continue
			}
			if score := residual(&open[j], u); score < bestScore {
				bestScore = score
				bestIdx = j
			}
		}
		if bestIdx >= 0 {
			place(&open[bestIdx], u)
			continue
		}

		next := -1
		for j := range unopened {
			if u.Weight <= unopened[j].WeightCapacity && u.Volume <= unopened[j].VolumeCapacity {
				next = j
				break
			}
		}
		if next < 0 {
			res.Unassigned = append(res.Unassigned, u.ID)
			continue
		}

		c := unopened[next]
		unopened = append(unopened[:next], unopened[next+1:]...)
		oc := openCarrier{carrier: c, remainingWeight: c.WeightCapacity, remainingVolume: c.VolumeCapacity}
		place(&oc, u)
		open = append(open, oc)
	}

	for i := range open {
		oc := &open[i]
		load := model.CarrierLoad{
			CarrierID:      oc.carrier.ID,
			UnitIDs:        make([]int64, len(oc.units)),
			WeightCapacity: oc.carrier.WeightCapacity,
			VolumeCapacity: oc.carrier.VolumeCapacity,
			Cost:           oc.carrier.Cost,
		}
		for k, u := range oc.units {
			load.UnitIDs[k] = u.ID
			load.Weight += u.Weight
			load.Volume += u.Volume
		}
		res.Assignment[load.CarrierID] = load.UnitIDs
		res.Loads = append(res.Loads, load)
		res.TotalCost += load.Cost
	}
	return res, nil
}

// sortByDominance orders units so the most demanding come first.
// Dominance = max(weightFraction, volumeFraction) relative to the largest carrier.
func sortByDominance(units []model.Unit, carriers []model.Carrier) {
	var maxWeight, maxVolume float64
	for i := range carriers {
		maxWeight = math.Max(maxWeight, carriers[i].WeightCapacity)
		maxVolume = math.Max(maxVolume, carriers[i].VolumeCapacity)
	}
	if maxWeight == 0 || maxVolume == 0 {
		return
	}

	dominance := func(u *model.Unit) float64 {
		return math.Max(u.Weight/maxWeight, u.Volume/maxVolume)
	}
	sort.SliceStable(units, func(i, j int) bool {
		return dominance(&units[i]) > dominance(&units[j])
	})
}

func fits(oc *openCarrier, u *model.Unit) bool {
	return u.Weight <= oc.remainingWeight && u.Volume <= oc.remainingVolume
}

// residual measures how much room would be left after placing u. Lower =
// tighter fit = preferred.
func residual(oc *openCarrier, u *model.Unit) float64 {
	if oc.carrier.WeightCapacity == 0 || oc.carrier.VolumeCapacity == 0 {
		return math.MaxFloat64
	}
	w := (oc.remainingWeight - u.Weight) / oc.carrier.WeightCapacity
	v := (oc.remainingVolume - u.Volume) / oc.carrier.VolumeCapacity
	return math.Sqrt(w*w + v*v)
}

func place(oc *openCarrier, u *model.Unit) {
	oc.units = append(oc.units, *u)
	oc.remainingWeight -= u.Weight
	oc.remainingVolume -= u.Volume
}
