package optimizer

import (
	"fmt"

	"github.com/guimove/trainfit/internal/model"
)

// Assign selects carriers for the snapshot and packs its units onto them in
// selection order. Units no selected carrier can take are listed in
// Result.Unassigned; that is not an error. Selected carriers that end up
// empty are dropped and cost nothing.
func (o *Optimizer) Assign(snap model.Snapshot) (*model.Result, error) {
	if len(snap.Units) == 0 {
		return model.EmptyResult(), nil
	}
	if len(snap.Carriers) == 0 {
		res := model.EmptyResult()
		res.Unassigned = unitIDs(snap.Units)
		return res, nil
	}

	q := o.quantizer()
	carriers, err := q.carriers(snap.Carriers)
	if err != nil {
		return nil, err
	}
	units, err := q.units(snap.Units)
	if err != nil {
		return nil, err
	}

	var demandWeight, demandVolume int
	for i := range units {
		demandWeight += units[i].weight
		demandVolume += units[i].volume
	}

	var selected []int
	if len(carriers) == 1 {
		selected = []int{0}
	} else {
		selected, err = o.selector().Select(carriers, demandWeight, demandVolume)
		if err != nil {
			return nil, fmt.Errorf("selecting carriers: %w", err)
		}
	}

	packer := o.packer()
	res := model.EmptyResult()
	pool := units

	for _, ci := range selected {
		if len(pool) == 0 {
			break
		}
		c := carriers[ci]

		picked, err := packer.Pack(c, pool)
		if err != nil {
			return nil, fmt.Errorf("packing carrier %d: %w", c.src.ID, err)
		}
		if len(picked) == 0 {
			continue
		}

		load := model.CarrierLoad{
			CarrierID:      c.src.ID,
			UnitIDs:        make([]int64, 0, len(picked)),
			WeightCapacity: c.src.WeightCapacity,
			VolumeCapacity: c.src.VolumeCapacity,
			Cost:           c.src.Cost,
		}
		taken := make(map[int]struct{}, len(picked))
		for _, idx := range picked {
			u := pool[idx].src
			load.UnitIDs = append(load.UnitIDs, u.ID)
			load.Weight += u.Weight
			load.Volume += u.Volume
			taken[idx] = struct{}{}
		}

		res.Assignment[c.src.ID] = load.UnitIDs
		res.Loads = append(res.Loads, load)
		res.TotalCost += c.src.Cost
		pool = remaining(pool, taken)
	}

	for i := range pool {
		res.Unassigned = append(res.Unassigned, pool[i].src.ID)
	}
	return res, nil
}

// remaining returns pool without the taken indices, order preserved.
func remaining(pool []unitRec, taken map[int]struct{}) []unitRec {
	out := make([]unitRec, 0, len(pool)-len(taken))
	for i := range pool {
		if _, ok := taken[i]; !ok {
			out = append(out, pool[i])
		}
	}
	return out
}

func unitIDs(units []model.Unit) []int64 {
	ids := make([]int64, len(units))
	for i := range units {
		ids[i] = units[i].ID
	}
	return ids
}
