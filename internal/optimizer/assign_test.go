package optimizer

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/guimove/trainfit/internal/model"
)

// helper to create a carrier
func makeCarrier(id int64, weight, volume, cost float64) model.Carrier {
	return model.Carrier{ID: id, WeightCapacity: weight, VolumeCapacity: volume, Cost: cost}
}

// helper to create units with ids 1..n from parallel slices
func makeUnits(weights, volumes []float64) []model.Unit {
	units := make([]model.Unit, len(weights))
	for i := range weights {
		units[i] = model.Unit{ID: int64(i + 1), Weight: weights[i], Volume: volumes[i]}
	}
	return units
}

func twoEqualTrains() model.Snapshot {
	return model.Snapshot{
		Carriers: []model.Carrier{
			makeCarrier(1, 8, 5, 10),
			makeCarrier(2, 10, 6, 10),
		},
		Units: makeUnits([]float64{5, 2, 3, 4, 4}, []float64{2, 1, 1, 2, 3}),
	}
}

func sixTrains() model.Snapshot {
	return model.Snapshot{
		Carriers: []model.Carrier{
			makeCarrier(1, 1, 1, 10),
			makeCarrier(2, 1, 1, 11),
			makeCarrier(3, 1, 1, 12),
			makeCarrier(4, 5, 1, 50),
			makeCarrier(5, 13, 1, 130),
			makeCarrier(6, 3, 1, 120),
		},
		Units: makeUnits([]float64{5, 2, 3, 4}, []float64{1, 1, 1, 1}),
	}
}

func mustAssign(t *testing.T, opts Options, snap model.Snapshot) *model.Result {
	t.Helper()
	res, err := New(opts).Assign(snap)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	return res
}

func TestAssign_UsesAllTrains(t *testing.T) {
	res := mustAssign(t, DefaultOptions(), twoEqualTrains())

	want := model.Assignment{
		1: {5, 4},
		2: {1, 2, 3},
	}
	if !reflect.DeepEqual(res.Assignment, want) {
		t.Errorf("assignment: got %v, want %v", res.Assignment, want)
	}
	if res.TotalCost != 20 {
		t.Errorf("total cost: got %v, want 20", res.TotalCost)
	}
	if len(res.Unassigned) != 0 {
		t.Errorf("expected nothing unassigned, got %v", res.Unassigned)
	}
	if len(res.Loads) != 2 || res.Loads[0].CarrierID != 1 || res.Loads[1].CarrierID != 2 {
		t.Fatalf("loads not in selection order: %+v", res.Loads)
	}
	if res.Loads[0].Weight != 8 || res.Loads[0].Volume != 5 {
		t.Errorf("carrier 1 load: got weight %v volume %v, want 8 and 5", res.Loads[0].Weight, res.Loads[0].Volume)
	}
}

func TestAssign_SelectsSingleLargeTrain(t *testing.T) {
	res := mustAssign(t, DefaultOptions(), sixTrains())

	// Train 5 holds at most one unit of volume; the other selected trains
	// cannot lift any remaining unit and are dropped.
	want := model.Assignment{5: {2}}
	if !reflect.DeepEqual(res.Assignment, want) {
		t.Errorf("assignment: got %v, want %v", res.Assignment, want)
	}
	if res.TotalCost != 130 {
		t.Errorf("total cost: got %v, want 130", res.TotalCost)
	}
	if !reflect.DeepEqual(res.Unassigned, []int64{1, 3, 4}) {
		t.Errorf("unassigned: got %v, want [1 3 4]", res.Unassigned)
	}
}

func TestAssign_SelectsSingleLargeTrain_WeightOnly(t *testing.T) {
	opts := DefaultOptions()
	opts.EnforceVolume = false
	res := mustAssign(t, opts, sixTrains())

	want := model.Assignment{5: {3, 2, 1}}
	if !reflect.DeepEqual(res.Assignment, want) {
		t.Errorf("assignment: got %v, want %v", res.Assignment, want)
	}
	if res.TotalCost != 130 {
		t.Errorf("total cost: got %v, want 130", res.TotalCost)
	}
	if !reflect.DeepEqual(res.Unassigned, []int64{4}) {
		t.Errorf("unassigned: got %v, want [4]", res.Unassigned)
	}
}

func TestAssign_EmptyUnits(t *testing.T) {
	snap := twoEqualTrains()
	snap.Units = nil

	res := mustAssign(t, DefaultOptions(), snap)
	if len(res.Assignment) != 0 || res.TotalCost != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if len(res.Unassigned) != 0 {
		t.Errorf("expected no unassigned units, got %v", res.Unassigned)
	}
}

func TestAssign_NoCarriers(t *testing.T) {
	snap := twoEqualTrains()
	snap.Carriers = nil

	res := mustAssign(t, DefaultOptions(), snap)
	if len(res.Assignment) != 0 || res.TotalCost != 0 {
		t.Errorf("expected empty assignment, got %+v", res)
	}
	if !reflect.DeepEqual(res.Unassigned, []int64{1, 2, 3, 4, 5}) {
		t.Errorf("expected every unit unassigned, got %v", res.Unassigned)
	}
}

func TestAssign_SingleCarrierDominates(t *testing.T) {
	snap := twoEqualTrains()
	snap.Carriers = []model.Carrier{makeCarrier(9, 100, 100, 42)}

	res := mustAssign(t, DefaultOptions(), snap)
	if !reflect.DeepEqual(res.Assignment, model.Assignment{9: {1, 2, 3, 4, 5}}) {
		t.Errorf("assignment: got %v", res.Assignment)
	}
	if res.TotalCost != 42 {
		t.Errorf("total cost: got %v, want 42", res.TotalCost)
	}
}

func TestAssign_SingleCarrierBypassesSelection(t *testing.T) {
	snap := model.Snapshot{
		Carriers: []model.Carrier{makeCarrier(1, 3, 3, 7)},
		Units:    makeUnits([]float64{2, 2}, []float64{1, 1}),
	}

	res := mustAssign(t, DefaultOptions(), snap)
	if !reflect.DeepEqual(res.Assignment, model.Assignment{1: {1}}) {
		t.Errorf("assignment: got %v, want map[1:[1]]", res.Assignment)
	}
	if !reflect.DeepEqual(res.Unassigned, []int64{2}) {
		t.Errorf("unassigned: got %v, want [2]", res.Unassigned)
	}
	if res.TotalCost != 7 {
		t.Errorf("total cost: got %v, want 7", res.TotalCost)
	}
}

func TestAssign_FractionalQuantitiesWithResolution(t *testing.T) {
	snap := twoEqualTrains()
	for i := range snap.Carriers {
		snap.Carriers[i].WeightCapacity /= 2
		snap.Carriers[i].VolumeCapacity /= 2
	}
	for i := range snap.Units {
		snap.Units[i].Weight /= 2
		snap.Units[i].Volume /= 2
	}

	_, err := New(DefaultOptions()).Assign(snap)
	if !errors.Is(err, ErrCapacityOverflow) {
		t.Fatalf("expected ErrCapacityOverflow at resolution 1, got %v", err)
	}

	opts := DefaultOptions()
	opts.Resolution = 2
	res := mustAssign(t, opts, snap)
	want := model.Assignment{1: {5, 4}, 2: {1, 2, 3}}
	if !reflect.DeepEqual(res.Assignment, want) {
		t.Errorf("assignment: got %v, want %v", res.Assignment, want)
	}
}

func TestAssign_TableCellLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxTableCells = 10

	_, err := New(opts).Assign(twoEqualTrains())
	if !errors.Is(err, ErrCapacityOverflow) {
		t.Fatalf("expected ErrCapacityOverflow, got %v", err)
	}
}

func TestAssign_QuantityLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxQuantity = 9

	_, err := New(opts).Assign(twoEqualTrains())
	if !errors.Is(err, ErrCapacityOverflow) {
		t.Fatalf("expected ErrCapacityOverflow for capacity 10 over limit 9, got %v", err)
	}
}

func TestCheckQuantity(t *testing.T) {
	opts := DefaultOptions()
	opts.Resolution = 2
	opts.MaxQuantity = 20
	o := New(opts)

	tests := []struct {
		v    float64
		want error
	}{
		{0, nil},
		{2.5, nil},
		{10, nil},
		{2.25, ErrCapacityOverflow},
		{10.5, ErrCapacityOverflow},
		{-1, ErrInvalidInput},
		{math.NaN(), ErrInvalidInput},
		{math.Inf(1), ErrInvalidInput},
	}
	for _, tt := range tests {
		err := o.CheckQuantity("weight", tt.v)
		if tt.want == nil {
			if err != nil {
				t.Errorf("CheckQuantity(%v): unexpected error %v", tt.v, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("CheckQuantity(%v): got %v, want %v", tt.v, err, tt.want)
		}
	}
}

func TestAssign_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Snapshot)
	}{
		{"negative weight", func(s *model.Snapshot) { s.Units[0].Weight = -1 }},
		{"nan volume", func(s *model.Snapshot) { s.Units[1].Volume = math.NaN() }},
		{"infinite capacity", func(s *model.Snapshot) { s.Carriers[0].WeightCapacity = math.Inf(1) }},
		{"negative cost", func(s *model.Snapshot) { s.Carriers[1].Cost = -3 }},
		{"duplicate unit", func(s *model.Snapshot) { s.Units[2].ID = s.Units[0].ID }},
		{"duplicate carrier", func(s *model.Snapshot) { s.Carriers[1].ID = s.Carriers[0].ID }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := twoEqualTrains()
			tt.mutate(&snap)
			_, err := New(DefaultOptions()).Assign(snap)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAssign_Infeasible(t *testing.T) {
	snap := model.Snapshot{
		Carriers: []model.Carrier{
			makeCarrier(1, 10, 1, 5),
			makeCarrier(2, 10, 1, 6),
		},
		Units: []model.Unit{{ID: 1, Weight: 5, Volume: 5}},
	}

	_, err := New(DefaultOptions()).Assign(snap)
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestAssign_DoesNotMutateInput(t *testing.T) {
	snap := sixTrains()
	before, _ := json.Marshal(snap)

	_ = mustAssign(t, DefaultOptions(), snap)

	after, _ := json.Marshal(snap)
	if string(before) != string(after) {
		t.Error("snapshot was mutated by Assign")
	}
}

func TestAssign_Deterministic(t *testing.T) {
	for _, snap := range []model.Snapshot{twoEqualTrains(), sixTrains()} {
		a := mustAssign(t, DefaultOptions(), snap)
		b := mustAssign(t, DefaultOptions(), snap)

		ja, _ := json.Marshal(a)
		jb, _ := json.Marshal(b)
		if string(ja) != string(jb) {
			t.Errorf("results differ:\n%s\n%s", ja, jb)
		}
	}
}

// TestAssign_Properties checks partition, feasibility and cost accounting over
// generated snapshots.
func TestAssign_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	opt := New(DefaultOptions())

	for run := 0; run < 200; run++ {
		snap := randomSnapshot(rng)

		res, err := opt.Assign(snap)
		if errors.Is(err, ErrInfeasible) {
			continue
		}
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", run, err)
		}

		units := make(map[int64]model.Unit, len(snap.Units))
		for _, u := range snap.Units {
			units[u.ID] = u
		}
		carriers := make(map[int64]model.Carrier, len(snap.Carriers))
		for _, c := range snap.Carriers {
			carriers[c.ID] = c
		}

		seen := make(map[int64]bool)
		var cost float64
		for cid, ids := range res.Assignment {
			c, ok := carriers[cid]
			if !ok {
				t.Fatalf("run %d: unknown carrier %d", run, cid)
			}
			if len(ids) == 0 {
				t.Errorf("run %d: carrier %d kept with no units", run, cid)
			}
			cost += c.Cost

			var w, v float64
			for _, id := range ids {
				if seen[id] {
					t.Fatalf("run %d: unit %d assigned twice", run, id)
				}
				seen[id] = true
				w += units[id].Weight
				v += units[id].Volume
			}
			if w > c.WeightCapacity || v > c.VolumeCapacity {
				t.Errorf("run %d: carrier %d overloaded: weight %v/%v volume %v/%v",
					run, cid, w, c.WeightCapacity, v, c.VolumeCapacity)
			}
		}
		for _, id := range res.Unassigned {
			if seen[id] {
				t.Fatalf("run %d: unit %d both assigned and unassigned", run, id)
			}
			seen[id] = true
		}
		if len(seen) != len(snap.Units) {
			t.Errorf("run %d: %d of %d units accounted for", run, len(seen), len(snap.Units))
		}
		if math.Abs(cost-res.TotalCost) > 1e-9 {
			t.Errorf("run %d: total cost %v, carriers sum to %v", run, res.TotalCost, cost)
		}
	}
}

func randomSnapshot(rng *rand.Rand) model.Snapshot {
	var snap model.Snapshot
	nc := 1 + rng.IntN(6)
	for i := 0; i < nc; i++ {
		snap.Carriers = append(snap.Carriers, makeCarrier(
			int64(i+1),
			float64(1+rng.IntN(20)),
			float64(1+rng.IntN(12)),
			float64(5+rng.IntN(50)),
		))
	}
	nu := 1 + rng.IntN(10)
	for i := 0; i < nu; i++ {
		snap.Units = append(snap.Units, model.Unit{
			ID:     int64(100 + i),
			Weight: float64(1 + rng.IntN(8)),
			Volume: float64(1 + rng.IntN(4)),
		})
	}
	return snap
}
