package model

// Unit is a shippable item as seen by the optimizer.
type Unit struct {
	ID     int64   `json:"id" yaml:"id"`
	Weight float64 `json:"weight" yaml:"weight"`
	Volume float64 `json:"volume" yaml:"volume"`
}

// Parcel is the persisted unit record. TrainID is nil until the parcel is
// linked to a train by a fill.
type Parcel struct {
	ID      int64   `json:"id"`
	Weight  float64 `json:"weight"`
	Volume  float64 `json:"volume"`
	TrainID *int64  `json:"train_id"`
}

// Unit projects the parcel into the optimizer's unit record.
func (p Parcel) Unit() Unit {
	return Unit{ID: p.ID, Weight: p.Weight, Volume: p.Volume}
}

// Assigned reports whether the parcel is already linked to a train.
func (p Parcel) Assigned() bool {
	return p.TrainID != nil
}

// ParcelInput is the payload for creating a parcel.
type ParcelInput struct {
	Weight float64 `json:"weight"`
	Volume float64 `json:"volume"`
}
