package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/guimove/trainfit/internal/model"
)

// Memory is an in-process store used when no database is configured.
type Memory struct {
	mu         sync.Mutex
	trainlines map[int64]model.Trainline
	trains     map[int64]model.Train
	parcels    map[int64]model.Parcel
	nextID     map[string]int64 // table -> last issued id
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		trainlines: map[int64]model.Trainline{},
		trains:     map[int64]model.Train{},
		parcels:    map[int64]model.Parcel{},
		nextID:     map[string]int64{},
	}
}

func (m *Memory) issue(table string) int64 {
	m.nextID[table]++
	return m.nextID[table]
}

func (m *Memory) CreateTrainline(ctx context.Context, in model.TrainlineInput) (model.Trainline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.trainlines {
		if l.Name == in.Name {
			return model.Trainline{}, fmt.Errorf("trainline %q: %w", in.Name, ErrConflict)
		}
	}
	l := model.Trainline{ID: m.issue("trainlines"), Name: in.Name}
	m.trainlines[l.ID] = l
	return l, nil
}

func (m *Memory) ListTrainlines(ctx context.Context) ([]model.Trainline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Trainline, 0, len(m.trainlines))
	for _, l := range m.trainlines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) CreateTrain(ctx context.Context, in model.TrainInput) (model.Train, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.trains {
		if t.Name == in.Name {
			return model.Train{}, fmt.Errorf("train %q: %w", in.Name, ErrConflict)
		}
	}
	if in.LineID != nil {
		if _, ok := m.trainlines[*in.LineID]; !ok {
			return model.Train{}, fmt.Errorf("trainline %d: %w", *in.LineID, ErrNotFound)
		}
	}
	t := model.Train{
		ID:          m.issue("trains"),
		Name:        in.Name,
		Cost:        in.Cost,
		Weight:      in.Weight,
		Volume:      in.Volume,
		LineID:      in.LineID,
		ReadyToBook: in.ReadyToBook,
	}
	m.trains[t.ID] = t
	return t, nil
}

func (m *Memory) GetTrain(ctx context.Context, id int64) (model.Train, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trains[id]
	if !ok {
		return model.Train{}, fmt.Errorf("train %d: %w", id, ErrNotFound)
	}
	return t, nil
}

func (m *Memory) ListTrains(ctx context.Context) ([]model.Train, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.Train{}
	for _, t := range m.trains {
		if t.BookedAt == nil {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) CreateParcel(ctx context.Context, in model.ParcelInput) (model.Parcel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := model.Parcel{ID: m.issue("parcels"), Weight: in.Weight, Volume: in.Volume}
	m.parcels[p.ID] = p
	return p, nil
}

func (m *Memory) ListParcels(ctx context.Context) ([]model.Parcel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Parcel, 0, len(m.parcels))
	for _, p := range m.parcels {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Snapshot(ctx context.Context) (model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var trains []model.Train
	for _, t := range m.trains {
		if t.Available() {
			trains = append(trains, t)
		}
	}
	sort.Slice(trains, func(i, j int) bool { return trains[i].ID < trains[j].ID })

	var parcels []model.Parcel
	for _, p := range m.parcels {
		if !p.Assigned() {
			parcels = append(parcels, p)
		}
	}
	sort.Slice(parcels, func(i, j int) bool { return parcels[i].ID < parcels[j].ID })

	return model.SnapshotFromRecords(trains, parcels, time.Now().UTC()), nil
}

func (m *Memory) ApplyAssignment(ctx context.Context, a model.Assignment) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate everything first so a bad id leaves the store untouched.
	for trainID, parcelIDs := range a {
		if _, ok := m.trains[trainID]; !ok {
			return 0, fmt.Errorf("train %d: %w", trainID, ErrNotFound)
		}
		for _, pid := range parcelIDs {
			if _, ok := m.parcels[pid]; !ok {
				return 0, fmt.Errorf("parcel %d: %w", pid, ErrNotFound)
			}
		}
	}

	linked := 0
	for trainID, parcelIDs := range a {
		if len(parcelIDs) == 0 {
			continue
		}
		for _, pid := range parcelIDs {
			p := m.parcels[pid]
			if p.Assigned() {
				continue
			}
			id := trainID
			p.TrainID = &id
			m.parcels[pid] = p
			linked++
		}
		t := m.trains[trainID]
		t.ReadyToBook = true
		m.trains[trainID] = t
	}
	return linked, nil
}

func (m *Memory) BookReadyTrains(ctx context.Context, at time.Time) ([]model.Train, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	booked := []model.Train{}
	for id, t := range m.trains {
		if !t.ReadyToBook || t.BookedAt != nil {
			continue
		}
		stamp := at
		t.BookedAt = &stamp
		m.trains[id] = t
		booked = append(booked, t)
	}
	sort.Slice(booked, func(i, j int) bool { return booked[i].ID < booked[j].ID })
	return booked, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
