// Package store persists train lines, trains and parcels.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/guimove/trainfit/internal/model"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique name is already taken.
	ErrConflict = errors.New("conflict")
)

// Store is the persistence interface used by the orchestrator and the API.
type Store interface {
	// Train lines
	CreateTrainline(ctx context.Context, in model.TrainlineInput) (model.Trainline, error)
	ListTrainlines(ctx context.Context) ([]model.Trainline, error)

	// Trains
	CreateTrain(ctx context.Context, in model.TrainInput) (model.Train, error)
	GetTrain(ctx context.Context, id int64) (model.Train, error)
	// ListTrains returns unbooked trains ordered by name.
	ListTrains(ctx context.Context) ([]model.Train, error)

	// Parcels
	CreateParcel(ctx context.Context, in model.ParcelInput) (model.Parcel, error)
	// ListParcels returns every parcel ordered by id.
	ListParcels(ctx context.Context) ([]model.Parcel, error)

	// Snapshot returns the available trains and the unassigned parcels,
	// both ordered by id.
	Snapshot(ctx context.Context) (model.Snapshot, error)

	// ApplyAssignment links parcels to trains and marks every train that
	// received parcels ready to book, atomically. Parcels already linked are
	// left alone. Returns the number of parcels linked.
	ApplyAssignment(ctx context.Context, a model.Assignment) (int, error)

	// BookReadyTrains stamps every ready, unbooked train with at and returns
	// the trains booked.
	BookReadyTrains(ctx context.Context, at time.Time) ([]model.Train, error)

	Ping(ctx context.Context) error
	Close() error
}
