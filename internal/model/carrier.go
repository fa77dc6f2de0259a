package model

import "time"

// Carrier is a capacity-limited transport unit as seen by the optimizer.
type Carrier struct {
	ID             int64   `json:"id" yaml:"id"`
	WeightCapacity float64 `json:"weight_capacity" yaml:"weight_capacity"`
	VolumeCapacity float64 `json:"volume_capacity" yaml:"volume_capacity"`
	Cost           float64 `json:"cost" yaml:"cost"`
}

// Train is the persisted carrier record.
type Train struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Cost        float64    `json:"cost"`
	Weight      float64    `json:"weight"`
	Volume      float64    `json:"volume"`
	LineID      *int64     `json:"line_id,omitempty"`
	ReadyToBook bool       `json:"ready_to_book"`
	BookedAt    *time.Time `json:"booked_at,omitempty"`
}

// Carrier projects the train into the optimizer's carrier record.
func (t Train) Carrier() Carrier {
	return Carrier{
		ID:             t.ID,
		WeightCapacity: t.Weight,
		VolumeCapacity: t.Volume,
		Cost:           t.Cost,
	}
}

// Available reports whether the train can still take part in a fill.
func (t Train) Available() bool {
	return !t.ReadyToBook && t.BookedAt == nil
}

// TrainInput is the payload for creating a train.
type TrainInput struct {
	Name        string  `json:"name"`
	Cost        float64 `json:"cost"`
	Weight      float64 `json:"weight"`
	Volume      float64 `json:"volume"`
	LineID      *int64  `json:"line_id,omitempty"`
	ReadyToBook bool    `json:"ready_to_book,omitempty"`
}

// Trainline is a named line trains run on.
type Trainline struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	OccupiedAt *time.Time `json:"occupied_at"`
}

// TrainlineInput is the payload for creating a train line.
type TrainlineInput struct {
	Name string `json:"name"`
}
