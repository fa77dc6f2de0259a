package optimizer

import "fmt"

// Options bounds and tunes the optimizer.
type Options struct {
	// Resolution is the number of table columns per 1.0 of weight or volume.
	// Every quantity times Resolution must land on an integer.
	Resolution float64

	// MaxQuantity caps a single scaled weight or volume.
	MaxQuantity int

	// MaxTableCells caps (items+1) * (bound+1) for any table built.
	MaxTableCells int

	// MaxProbes caps how many weight thresholds the selector tries.
	// 0 = every threshold up to the summed carrier capacity.
	MaxProbes int

	// EnforceVolume repairs packings whose volume exceeds the carrier.
	EnforceVolume bool
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Resolution:    1,
		MaxQuantity:   1_000_000,
		MaxTableCells: 20_000_000,
		MaxProbes:     0,
		EnforceVolume: true,
	}
}

// Validate checks the options for consistency.
func (o Options) Validate() error {
	if o.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %v", o.Resolution)
	}
	if o.MaxQuantity <= 0 {
		return fmt.Errorf("max_quantity must be positive, got %d", o.MaxQuantity)
	}
	if o.MaxTableCells <= 0 {
		return fmt.Errorf("max_table_cells must be positive, got %d", o.MaxTableCells)
	}
	if o.MaxProbes < 0 {
		return fmt.Errorf("max_probes must be non-negative, got %d", o.MaxProbes)
	}
	return nil
}
