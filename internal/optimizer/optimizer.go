// Package optimizer assigns units to carriers at minimum total carrier cost.
package optimizer

import (
	"context"
	"fmt"

	"github.com/guimove/trainfit/internal/model"
)

// Strategy produces an assignment for a snapshot.
type Strategy interface {
	// Solve assigns the snapshot's units to its carriers.
	Solve(ctx context.Context, snap model.Snapshot) (*model.Result, error)

	// Name returns the strategy name.
	Name() string
}

// Optimizer is the knapsack strategy: select carriers by minimum cover cost,
// then pack each selected carrier by maximum volume.
type Optimizer struct {
	opts Options
}

// New creates an optimizer. Invalid options fall back to their defaults.
func New(opts Options) *Optimizer {
	def := DefaultOptions()
	if opts.Resolution <= 0 {
		opts.Resolution = def.Resolution
	}
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = def.MaxQuantity
	}
	if opts.MaxTableCells <= 0 {
		opts.MaxTableCells = def.MaxTableCells
	}
	if opts.MaxProbes < 0 {
		opts.MaxProbes = 0
	}
	return &Optimizer{opts: opts}
}

// Name returns the strategy name.
func (o *Optimizer) Name() string { return "knapsack" }

// Options returns the effective options.
func (o *Optimizer) Options() Options { return o.opts }

// Solve implements Strategy. The computation itself is not interruptible;
// ctx is only checked before it starts.
func (o *Optimizer) Solve(ctx context.Context, snap model.Snapshot) (*model.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return o.Assign(snap)
}

// CheckQuantity reports whether v can be used as a weight or volume under
// the optimizer's resolution and quantity bound. what names v in the error.
func (o *Optimizer) CheckQuantity(what string, v float64) error {
	_, err := o.quantizer().columns(v, fmt.Sprintf("%s %v", what, v))
	return err
}

func (o *Optimizer) selector() CarrierSelector {
	return CarrierSelector{MaxTableCells: o.opts.MaxTableCells, MaxProbes: o.opts.MaxProbes}
}

func (o *Optimizer) packer() ParcelPacker {
	return ParcelPacker{MaxTableCells: o.opts.MaxTableCells, EnforceVolume: o.opts.EnforceVolume}
}

func (o *Optimizer) quantizer() quantizer {
	return quantizer{resolution: o.opts.Resolution, max: o.opts.MaxQuantity}
}
