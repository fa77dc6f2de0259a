package knapsack

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// helper to build items from parallel weight/value slices
func makeItems(weights []int, values []float64) []Item {
	items := make([]Item, len(weights))
	for i := range weights {
		items[i] = Item{Weight: weights[i], Value: values[i]}
	}
	return items
}

func mustBuild(t *testing.T, obj Objective, items []Item) *Table {
	t.Helper()
	tbl, err := Build(obj, items)
	if err != nil {
		t.Fatalf("Build(%v) failed: %v", obj, err)
	}
	return tbl
}

func TestMaximize_PacksMostVolume(t *testing.T) {
	// parcel weights and volumes; capacity 8
	items := makeItems([]int{5, 2, 3, 4, 4}, []float64{2, 1, 1, 2, 3})
	tbl := mustBuild(t, Maximize, items)

	if tbl.Bound() != 18 {
		t.Fatalf("expected bound 18, got %d", tbl.Bound())
	}
	if got := tbl.Best(8); got != 5 {
		t.Fatalf("Best(8) = %v, want 5", got)
	}
	if got := tbl.Reconstruct(8); !reflect.DeepEqual(got, []int{4, 3}) {
		t.Errorf("Reconstruct(8) = %v, want [4 3]", got)
	}
}

func TestMaximize_RowZeroIsZero(t *testing.T) {
	tbl := mustBuild(t, Maximize, makeItems([]int{3}, []float64{7}))
	for w := 0; w <= tbl.Bound(); w++ {
		if tbl.At(0, w) != 0 {
			t.Errorf("T[0][%d] = %v, want 0", w, tbl.At(0, w))
		}
	}
	if tbl.At(1, 2) != 0 || tbl.At(1, 3) != 7 {
		t.Errorf("unexpected row 1: %v %v", tbl.At(1, 2), tbl.At(1, 3))
	}
}

func TestMinimizeCover_Initialization(t *testing.T) {
	tbl := mustBuild(t, MinimizeCover, makeItems([]int{2, 3}, []float64{4, 5}))

	for w := 0; w <= tbl.Bound(); w++ {
		if !math.IsInf(tbl.At(0, w), 1) {
			t.Errorf("T[0][%d] = %v, want +Inf", w, tbl.At(0, w))
		}
	}
	for i := 1; i <= tbl.Len(); i++ {
		if tbl.At(i, 0) != 0 {
			t.Errorf("T[%d][0] = %v, want 0", i, tbl.At(i, 0))
		}
	}
	// One item covers anything up to its own weight.
	if tbl.At(1, 1) != 4 || tbl.At(1, 2) != 4 {
		t.Errorf("unexpected cover row 1: %v %v", tbl.At(1, 1), tbl.At(1, 2))
	}
	if !math.IsInf(tbl.At(1, 3), 1) {
		t.Errorf("T[1][3] = %v, want +Inf", tbl.At(1, 3))
	}
}

func TestMinimizeCover_SelectsCheapestCover(t *testing.T) {
	// train capacities and costs
	items := makeItems([]int{1, 1, 1, 5, 13, 3}, []float64{10, 11, 12, 50, 130, 120})
	tbl := mustBuild(t, MinimizeCover, items)

	tests := []struct {
		w        int
		wantCost float64
		wantIdx  []int
	}{
		{14, 140, []int{4, 0}},
		{15, 151, []int{4, 1, 0}},
		{16, 163, []int{4, 2, 1, 0}},
		{1, 10, []int{0}},
	}

	for _, tt := range tests {
		if got := tbl.Best(tt.w); got != tt.wantCost {
			t.Errorf("Best(%d) = %v, want %v", tt.w, got, tt.wantCost)
		}
		if got := tbl.Reconstruct(tt.w); !reflect.DeepEqual(got, tt.wantIdx) {
			t.Errorf("Reconstruct(%d) = %v, want %v", tt.w, got, tt.wantIdx)
		}
	}
}

func TestMinimizeCover_ZeroCostItemsStillReconstruct(t *testing.T) {
	tbl := mustBuild(t, MinimizeCover, makeItems([]int{5, 5}, []float64{0, 0}))
	if got := tbl.Best(10); got != 0 {
		t.Fatalf("Best(10) = %v, want 0", got)
	}
	if got := tbl.Reconstruct(10); !reflect.DeepEqual(got, []int{1, 0}) {
		t.Errorf("Reconstruct(10) = %v, want [1 0]", got)
	}
}

func TestMinimizeExact(t *testing.T) {
	// unit volumes as weights, unit weights as values
	items := makeItems([]int{1, 1, 1, 1}, []float64{5, 2, 3, 4})
	tbl := mustBuild(t, MinimizeExact, items)

	if tbl.At(0, 0) != 0 || !math.IsInf(tbl.At(0, 1), 1) {
		t.Fatalf("unexpected row 0: %v %v", tbl.At(0, 0), tbl.At(0, 1))
	}

	tests := []struct {
		w        int
		wantCost float64
		wantIdx  []int
	}{
		{1, 2, []int{1}},
		{2, 5, []int{2, 1}},
		{4, 14, []int{3, 2, 1, 0}},
	}
	for _, tt := range tests {
		if got := tbl.Best(tt.w); got != tt.wantCost {
			t.Errorf("Best(%d) = %v, want %v", tt.w, got, tt.wantCost)
		}
		if got := tbl.Reconstruct(tt.w); !reflect.DeepEqual(got, tt.wantIdx) {
			t.Errorf("Reconstruct(%d) = %v, want %v", tt.w, got, tt.wantIdx)
		}
	}
}

func TestReconstruct_Unreachable(t *testing.T) {
	tbl := mustBuild(t, MinimizeExact, makeItems([]int{2, 2}, []float64{1, 1}))
	if tbl.Reachable(3) {
		t.Fatal("odd volume should be unreachable from even items")
	}
	if got := tbl.Reconstruct(3); got != nil {
		t.Errorf("expected nil reconstruction, got %v", got)
	}
	if got := tbl.Reconstruct(-1); got != nil {
		t.Errorf("expected nil for negative column, got %v", got)
	}
	if got := tbl.Reconstruct(tbl.Bound() + 1); got != nil {
		t.Errorf("expected nil past bound, got %v", got)
	}
}

func TestBuild_Empty(t *testing.T) {
	tbl := mustBuild(t, Maximize, nil)
	if tbl.Bound() != 0 || tbl.Best(0) != 0 {
		t.Fatalf("unexpected empty table: bound=%d best=%v", tbl.Bound(), tbl.Best(0))
	}
	if got := tbl.Reconstruct(0); len(got) != 0 {
		t.Errorf("expected nothing included, got %v", got)
	}

	cover := mustBuild(t, MinimizeCover, nil)
	if cover.Reachable(0) {
		t.Error("cover over no items must be unreachable")
	}
}

func TestBuild_NegativeWeight(t *testing.T) {
	_, err := Build(Maximize, makeItems([]int{1, -2}, []float64{1, 1}))
	if !errors.Is(err, ErrNegativeWeight) {
		t.Fatalf("expected ErrNegativeWeight, got %v", err)
	}
}

func TestCells(t *testing.T) {
	items := makeItems([]int{2, 3}, []float64{0, 0})
	if got := Cells(items); got != 18 {
		t.Errorf("Cells() = %d, want 18", got)
	}
	if got := Cells(nil); got != 1 {
		t.Errorf("Cells(nil) = %d, want 1", got)
	}
}

func TestObjective_String(t *testing.T) {
	if Maximize.String() != "maximize" || MinimizeCover.String() != "minimize-cover" {
		t.Error("unexpected objective names")
	}
	if Objective(9).String() != "objective(9)" {
		t.Errorf("unexpected fallback name %q", Objective(9).String())
	}
}
