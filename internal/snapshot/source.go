// Package snapshot loads the carriers and units handed to the optimizer.
package snapshot

import (
	"context"
	"errors"

	"github.com/guimove/trainfit/internal/model"
)

// ErrEmptySnapshot is returned when a source holds no carriers and no units.
var ErrEmptySnapshot = errors.New("snapshot has no carriers and no units")

// Source abstracts where an optimization snapshot comes from.
type Source interface {
	// Load returns the current snapshot.
	Load(ctx context.Context) (model.Snapshot, error)

	// Ping validates access to the backing data.
	Ping(ctx context.Context) error

	// BackendType names the backend ("file", "store").
	BackendType() string
}
