package model

// Assignment maps a carrier id to the unit ids packed onto it, in packing
// discovery order. Carriers that received nothing are absent.
type Assignment map[int64][]int64

// Count returns the number of assigned units.
func (a Assignment) Count() int {
	n := 0
	for _, ids := range a {
		n += len(ids)
	}
	return n
}

// CarrierLoad details what one carrier ended up carrying.
type CarrierLoad struct {
	CarrierID      int64   `json:"carrier_id"`
	UnitIDs        []int64 `json:"unit_ids"`
	Weight         float64 `json:"weight"`
	Volume         float64 `json:"volume"`
	WeightCapacity float64 `json:"weight_capacity"`
	VolumeCapacity float64 `json:"volume_capacity"`
	Cost           float64 `json:"cost"`
}

// WeightUtilization returns used weight over capacity (0.0 - 1.0).
func (l CarrierLoad) WeightUtilization() float64 {
	if l.WeightCapacity <= 0 {
		return 0
	}
	return l.Weight / l.WeightCapacity
}

// VolumeUtilization returns used volume over capacity (0.0 - 1.0).
func (l CarrierLoad) VolumeUtilization() float64 {
	if l.VolumeCapacity <= 0 {
		return 0
	}
	return l.Volume / l.VolumeCapacity
}

// Result is the outcome of one optimization call.
type Result struct {
	Assignment Assignment `json:"assignment"`
	TotalCost  float64    `json:"total_cost"`

	// Loads lists non-empty carriers in selection order.
	Loads []CarrierLoad `json:"loads"`

	// Unit ids that no selected carrier could take
	Unassigned []int64 `json:"unassigned,omitempty"`
}

// EmptyResult returns a result with no assignment and zero cost.
func EmptyResult() *Result {
	return &Result{Assignment: Assignment{}, Loads: []CarrierLoad{}}
}

// AssignedCount returns the number of units placed on a carrier.
func (r *Result) AssignedCount() int {
	return r.Assignment.Count()
}

// LoadReport summarizes how well the used carriers are filled.
type LoadReport struct {
	AvgWeightUtilization float64 `json:"avg_weight_utilization"`
	AvgVolumeUtilization float64 `json:"avg_volume_utilization"`

	// Fraction of carriers below 50% on either dimension
	UnderutilizedFraction float64 `json:"underutilized_fraction"`

	// 1.0 = weight and volume filled to the same degree on every carrier
	BalanceScore float64 `json:"balance_score"`
}

// FillSummary is what a fill reports back to its caller.
type FillSummary struct {
	AssignedItems int     `json:"assigned_items"`
	TotalCost     float64 `json:"total_cost"`
}

// Comparison is one optimizer variant's outcome in a what-if run.
type Comparison struct {
	Name   string     `json:"name"`
	Result *Result    `json:"result,omitempty"`
	Loads  LoadReport `json:"load_report"`
	Err    string     `json:"error,omitempty"`

	Warnings []string `json:"warnings,omitempty"`

	// Cost difference against the first scenario, in percent. Negative = savings.
	CostVsBaseline float64 `json:"cost_vs_baseline_pct"`
}
