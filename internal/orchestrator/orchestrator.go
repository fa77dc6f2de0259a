// Package orchestrator runs the fill and book flows: snapshot the store,
// optimize, persist, publish.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/guimove/trainfit/internal/cache"
	"github.com/guimove/trainfit/internal/events"
	"github.com/guimove/trainfit/internal/metrics"
	"github.com/guimove/trainfit/internal/model"
	"github.com/guimove/trainfit/internal/optimizer"
	"github.com/guimove/trainfit/internal/snapshot"
	"github.com/guimove/trainfit/internal/store"
)

// Orchestrator coordinates the assignment pipeline.
type Orchestrator struct {
	Store     store.Store
	Broker    events.Broker
	Optimizer *optimizer.Optimizer
	Cache     *cache.ResultCache
	Metrics   *metrics.Recorder // optional
	Log       zerolog.Logger

	// Now stamps bookings. Defaults to time.Now.
	Now func() time.Time
}

// New creates an orchestrator with the given dependencies.
func New(st store.Store, broker events.Broker, opt *optimizer.Optimizer, rc *cache.ResultCache, rec *metrics.Recorder, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		Store:     st,
		Broker:    broker,
		Optimizer: opt,
		Cache:     rc,
		Metrics:   rec,
		Log:       log,
		Now:       time.Now,
	}
}

// Optimize assigns the snapshot's units, reusing a cached result when the
// same carriers, units and options were optimized before.
func (o *Orchestrator) Optimize(ctx context.Context, snap model.Snapshot) (*model.Result, error) {
	res, _, err := o.optimize(ctx, snap)
	return res, err
}

// optimize returns the result and its cache key. The key is empty when the
// snapshot cannot be fingerprinted.
func (o *Orchestrator) optimize(ctx context.Context, snap model.Snapshot) (*model.Result, string, error) {
	key, err := cache.Fingerprint(snap, o.Optimizer.Options())
	if err != nil {
		// NaN or infinite quantities; the optimizer reports them as invalid input.
		o.Log.Debug().Err(err).Msg("snapshot not cacheable")
		key = ""
	}
	if o.Cache != nil && key != "" {
		if res, ok := o.Cache.Get(key); ok {
			o.Log.Debug().Str("fingerprint", key[:12]).Msg("optimizer result served from cache")
			return res, key, nil
		}
	}

	start := time.Now()
	res, err := o.Optimizer.Solve(ctx, snap)
	elapsed := time.Since(start)
	o.observeRun(err, elapsed)
	if err != nil {
		return nil, "", fmt.Errorf("optimizing %d parcels over %d trains: %w", len(snap.Units), len(snap.Carriers), err)
	}

	o.Log.Info().
		Int("carriers", len(snap.Carriers)).
		Int("units", len(snap.Units)).
		Int("assigned", res.AssignedCount()).
		Int("unassigned", len(res.Unassigned)).
		Float64("total_cost", res.TotalCost).
		Dur("elapsed", elapsed).
		Msg("optimization finished")

	if o.Cache != nil && key != "" {
		o.Cache.Add(key, res)
		o.Log.Debug().Int("cached", o.Cache.Len()).Msg("optimizer result cached")
	}
	return res, key, nil
}

// Plan loads a snapshot from src and optimizes it without persisting
// anything.
func (o *Orchestrator) Plan(ctx context.Context, src snapshot.Source) (model.Snapshot, *model.Result, error) {
	o.Log.Info().Str("backend", src.BackendType()).Msg("loading snapshot")

	snap, err := src.Load(ctx)
	if err != nil {
		return model.Snapshot{}, nil, fmt.Errorf("loading snapshot: %w", err)
	}
	res, err := o.Optimize(ctx, snap)
	if err != nil {
		return snap, nil, err
	}
	return snap, res, nil
}

// Fill assigns every unassigned parcel it can to the available trains,
// persists the links and marks the trains used ready to book.
func (o *Orchestrator) Fill(ctx context.Context) (model.FillSummary, error) {
	snap, err := o.Store.Snapshot(ctx)
	if err != nil {
		return model.FillSummary{}, fmt.Errorf("loading snapshot: %w", err)
	}
	o.Log.Info().
		Int("trains", len(snap.Carriers)).
		Int("parcels", len(snap.Units)).
		Msg("filling parcels")

	res, key, err := o.optimize(ctx, snap)
	if err != nil {
		return model.FillSummary{}, err
	}

	assigned := 0
	if len(res.Assignment) > 0 {
		assigned, err = o.Store.ApplyAssignment(ctx, res.Assignment)
		if err != nil {
			return model.FillSummary{}, fmt.Errorf("persisting assignment: %w", err)
		}
		// The persisted links change the snapshot; its result is never reused.
		if o.Cache != nil && key != "" {
			o.Cache.Remove(key)
		}
	}

	summary := model.FillSummary{AssignedItems: assigned, TotalCost: res.TotalCost}
	if o.Metrics != nil {
		o.Metrics.ObserveFill(summary.AssignedItems, summary.TotalCost)
	}
	if len(res.Unassigned) > 0 {
		o.Log.Warn().Int("parcels", len(res.Unassigned)).Msg("parcels left without a train")
	}

	o.publish(ctx, events.New(events.AssignmentCompleted, map[string]any{
		"assigned_items": summary.AssignedItems,
		"total_cost":     summary.TotalCost,
		"trains":         trainIDs(res),
		"unassigned":     len(res.Unassigned),
	}))
	return summary, nil
}

// Book stamps every ready train as booked and returns them.
func (o *Orchestrator) Book(ctx context.Context) ([]model.Train, error) {
	booked, err := o.Store.BookReadyTrains(ctx, o.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("booking trains: %w", err)
	}
	o.Log.Info().Int("trains", len(booked)).Msg("trains booked")

	ids := make([]int64, len(booked))
	for i := range booked {
		ids[i] = booked[i].ID
	}
	o.publish(ctx, events.New(events.TrainsBooked, map[string]any{"trains": ids}))
	return booked, nil
}

// publish is best effort: the fill or booking is already persisted.
func (o *Orchestrator) publish(ctx context.Context, evt events.Event) {
	if o.Broker == nil {
		return
	}
	if err := o.Broker.Publish(ctx, evt); err != nil {
		o.Log.Error().Err(err).Str("event", evt.Type).Msg("publishing event failed")
	}
}

func (o *Orchestrator) observeRun(err error, d time.Duration) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.ObserveRun(Outcome(err), d)
}

// Outcome classifies an optimizer error for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, optimizer.ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, optimizer.ErrCapacityOverflow):
		return metrics.OutcomeOverflow
	case errors.Is(err, optimizer.ErrInfeasible):
		return metrics.OutcomeInfeasible
	default:
		return metrics.OutcomeError
	}
}

func trainIDs(res *model.Result) []int64 {
	ids := make([]int64, len(res.Loads))
	for i := range res.Loads {
		ids[i] = res.Loads[i].CarrierID
	}
	return ids
}
