package orchestrator

import (
	"context"
	"errors"
	"math"
	"testing"
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

// failingStore fails ApplyAssignment a fixed number of times.
type failingStore struct {
	store.Store
	failures int
}

func (f *failingStore) ApplyAssignment(ctx context.Context, a model.Assignment) (int, error) {
	if f.failures > 0 {
		f.failures--
		return 0, errors.New("connection reset")
	}
	return f.Store.ApplyAssignment(ctx, a)
}

func newOrchestrator(t *testing.T, st store.Store) (*Orchestrator, *events.Memory) {
	t.Helper()
	broker := events.NewMemory()
	t.Cleanup(func() { _ = broker.Close() })
	o := New(st, broker, optimizer.New(optimizer.DefaultOptions()), cache.NewResultCache(8), metrics.New(), zerolog.Nop())
	return o, broker
}

func seedTwoTrains(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	for _, in := range []model.TrainInput{
		{Name: "T1", Cost: 10, Weight: 8, Volume: 5},
		{Name: "T2", Cost: 10, Weight: 10, Volume: 6},
	} {
		if _, err := st.CreateTrain(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	for _, p := range []model.ParcelInput{
		{Weight: 5, Volume: 2}, {Weight: 2, Volume: 1}, {Weight: 3, Volume: 1},
		{Weight: 4, Volume: 2}, {Weight: 4, Volume: 3},
	} {
		if _, err := st.CreateParcel(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
}

func TestOrchestrator_Fill(t *testing.T) {
	st := store.NewMemory()
	seedTwoTrains(t, st)
	o, broker := newOrchestrator(t, st)

	ch, cancel := broker.Subscribe(context.Background())
	defer cancel()

	summary, err := o.Fill(context.Background())
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if summary.AssignedItems != 5 || summary.TotalCost != 20 {
		t.Errorf("unexpected summary %+v", summary)
	}

	parcels, _ := st.ListParcels(context.Background())
	for _, p := range parcels {
		if !p.Assigned() {
			t.Errorf("parcel %d not linked", p.ID)
		}
	}
	trains, _ := st.ListTrains(context.Background())
	for _, tr := range trains {
		if !tr.ReadyToBook {
			t.Errorf("train %s not marked ready", tr.Name)
		}
	}

	select {
	case evt := <-ch:
		if evt.Type != events.AssignmentCompleted {
			t.Errorf("unexpected event type %q", evt.Type)
		}
		if evt.Data["assigned_items"] != 5 {
			t.Errorf("unexpected event data %v", evt.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("no assignment event published")
	}

	// Nothing left to fill.
	summary, err = o.Fill(context.Background())
	if err != nil {
		t.Fatalf("second Fill failed: %v", err)
	}
	if summary.AssignedItems != 0 || summary.TotalCost != 0 {
		t.Errorf("expected empty second fill, got %+v", summary)
	}
}

func TestOrchestrator_FillLeavesUnusedTrainsAvailable(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	_, _ = st.CreateTrain(ctx, model.TrainInput{Name: "big", Cost: 10, Weight: 100, Volume: 100})
	_, _ = st.CreateTrain(ctx, model.TrainInput{Name: "pricey", Cost: 90, Weight: 100, Volume: 100})
	_, _ = st.CreateParcel(ctx, model.ParcelInput{Weight: 1, Volume: 1})

	o, _ := newOrchestrator(t, st)
	summary, err := o.Fill(ctx)
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if summary.TotalCost != 10 {
		t.Errorf("total cost: got %v, want 10", summary.TotalCost)
	}

	snap, _ := st.Snapshot(ctx)
	if len(snap.Carriers) != 1 || snap.Carriers[0].Cost != 90 {
		t.Errorf("expected the unused train to stay available, got %+v", snap.Carriers)
	}
}

func TestOrchestrator_FillRetryUsesCache(t *testing.T) {
	mem := store.NewMemory()
	seedTwoTrains(t, mem)
	st := &failingStore{Store: mem, failures: 1}
	o, _ := newOrchestrator(t, st)

	if _, err := o.Fill(context.Background()); err == nil {
		t.Fatal("expected persistence failure")
	}
	if o.Cache.Len() != 1 {
		t.Fatalf("expected the result to be cached, cache holds %d", o.Cache.Len())
	}

	summary, err := o.Fill(context.Background())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if summary.AssignedItems != 5 {
		t.Errorf("retry assigned %d, want 5", summary.AssignedItems)
	}
	if o.Cache.Len() != 0 {
		t.Errorf("expected the persisted result to be evicted, cache holds %d", o.Cache.Len())
	}
}

func TestOrchestrator_OptimizeRejectsNaN(t *testing.T) {
	o, _ := newOrchestrator(t, store.NewMemory())
	snap := model.Snapshot{
		Carriers: []model.Carrier{{ID: 1, WeightCapacity: 10, VolumeCapacity: 10, Cost: 3}},
		Units:    []model.Unit{{ID: 1, Weight: math.NaN(), Volume: 1}},
	}

	_, err := o.Optimize(context.Background(), snap)
	if !errors.Is(err, optimizer.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got := Outcome(err); got != metrics.OutcomeInvalid {
		t.Errorf("Outcome = %q, want %q", got, metrics.OutcomeInvalid)
	}
	if o.Cache.Len() != 0 {
		t.Errorf("nothing may be cached, cache holds %d", o.Cache.Len())
	}

	snap.Units[0].Weight = 2
	snap.Carriers[0].Cost = math.Inf(1)
	if _, err := o.Optimize(context.Background(), snap); !errors.Is(err, optimizer.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for infinite cost, got %v", err)
	}
}

func TestOrchestrator_FillInfeasible(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	_, _ = st.CreateTrain(ctx, model.TrainInput{Name: "A", Cost: 5, Weight: 10, Volume: 1})
	_, _ = st.CreateTrain(ctx, model.TrainInput{Name: "B", Cost: 6, Weight: 10, Volume: 1})
	_, _ = st.CreateParcel(ctx, model.ParcelInput{Weight: 5, Volume: 5})

	o, _ := newOrchestrator(t, st)
	_, err := o.Fill(ctx)
	if !errors.Is(err, optimizer.ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}

	parcels, _ := st.ListParcels(ctx)
	if parcels[0].Assigned() {
		t.Error("nothing may be persisted on failure")
	}
}

func TestOrchestrator_Book(t *testing.T) {
	st := store.NewMemory()
	seedTwoTrains(t, st)
	o, broker := newOrchestrator(t, st)
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	o.Now = func() time.Time { return at }

	if _, err := o.Fill(context.Background()); err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	ch, cancel := broker.Subscribe(context.Background())
	defer cancel()

	booked, err := o.Book(context.Background())
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if len(booked) != 2 {
		t.Fatalf("expected 2 booked trains, got %d", len(booked))
	}
	for _, b := range booked {
		if b.BookedAt == nil || !b.BookedAt.Equal(at) {
			t.Errorf("train %d booked at %v, want %v", b.ID, b.BookedAt, at)
		}
	}

	select {
	case evt := <-ch:
		if evt.Type != events.TrainsBooked {
			t.Errorf("unexpected event type %q", evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no booking event published")
	}
}

func TestOrchestrator_Plan(t *testing.T) {
	o, _ := newOrchestrator(t, store.NewMemory())
	src := snapshot.NewStaticSource(model.Snapshot{
		Carriers: []model.Carrier{{ID: 9, WeightCapacity: 10, VolumeCapacity: 10, Cost: 3}},
		Units:    []model.Unit{{ID: 1, Weight: 2, Volume: 2}},
	})

	snap, res, err := o.Plan(context.Background(), src)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(snap.Units) != 1 || res.TotalCost != 3 {
		t.Errorf("unexpected plan: %+v", res)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.OutcomeOK},
		{optimizer.ErrInvalidInput, metrics.OutcomeInvalid},
		{optimizer.ErrCapacityOverflow, metrics.OutcomeOverflow},
		{optimizer.ErrInfeasible, metrics.OutcomeInfeasible},
		{context.Canceled, metrics.OutcomeError},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
