package model

import "time"

// Snapshot is the point-in-time set of carriers and units handed to one
// optimization call.
type Snapshot struct {
	// When the snapshot was taken
	CollectedAt time.Time `json:"collected_at,omitempty" yaml:"collected_at,omitempty"`

	Carriers []Carrier `json:"carriers" yaml:"carriers"`
	Units    []Unit    `json:"units" yaml:"units"`
}

// TotalWeight returns the summed weight demand of all units.
func (s Snapshot) TotalWeight() float64 {
	var total float64
	for i := range s.Units {
		total += s.Units[i].Weight
	}
	return total
}

// TotalVolume returns the summed volume demand of all units.
func (s Snapshot) TotalVolume() float64 {
	var total float64
	for i := range s.Units {
		total += s.Units[i].Volume
	}
	return total
}

// TotalCapacity returns the summed weight and volume capacity of all carriers.
func (s Snapshot) TotalCapacity() (weight, volume float64) {
	for i := range s.Carriers {
		weight += s.Carriers[i].WeightCapacity
		volume += s.Carriers[i].VolumeCapacity
	}
	return weight, volume
}

// SnapshotFromRecords builds a snapshot from persisted trains and parcels,
// preserving their order.
func SnapshotFromRecords(trains []Train, parcels []Parcel, at time.Time) Snapshot {
	s := Snapshot{
		CollectedAt: at,
		Carriers:    make([]Carrier, len(trains)),
		Units:       make([]Unit, len(parcels)),
	}
	for i := range trains {
		s.Carriers[i] = trains[i].Carrier()
	}
	for i := range parcels {
		s.Units[i] = parcels[i].Unit()
	}
	return s
}
