package snapshot

import (
	"context"
	"fmt"

	"github.com/guimove/trainfit/internal/model"
	"github.com/guimove/trainfit/internal/store"
)

// StoreSource reads the available trains and unassigned parcels from a store.
type StoreSource struct {
	store store.Store
}

// NewStoreSource wraps st.
func NewStoreSource(st store.Store) *StoreSource {
	return &StoreSource{store: st}
}

func (s *StoreSource) Load(ctx context.Context) (model.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("loading snapshot from store: %w", err)
	}
	return snap, nil
}

func (s *StoreSource) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// BackendType returns "store".
func (s *StoreSource) BackendType() string {
	return "store"
}
