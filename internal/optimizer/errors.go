package optimizer

import "errors"

var (
	// ErrInvalidInput marks negative, NaN or infinite quantities and duplicate ids.
	ErrInvalidInput = errors.New("invalid optimizer input")

	// ErrCapacityOverflow marks quantities that cannot index a knapsack table:
	// not representable at the configured resolution, above the quantity cap,
	// or producing a table larger than the cell budget.
	ErrCapacityOverflow = errors.New("capacity overflow")

	// ErrInfeasible means no probed weight threshold yielded a carrier set
	// with enough volume capacity.
	ErrInfeasible = errors.New("no feasible carrier combination")
)
