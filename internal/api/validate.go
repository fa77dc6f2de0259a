package api

import (
	"fmt"
	"math"
	"strings"

	"github.com/guimove/trainfit/internal/model"
)

func validateTrainline(in *model.TrainlineInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// quantityChecker rejects weights and volumes the optimizer cannot scale.
type quantityChecker interface {
	CheckQuantity(what string, v float64) error
}

func validateTrain(in *model.TrainInput, qc quantityChecker) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"cost", in.Cost}, {"weight", in.Weight}, {"volume", in.Volume}} {
		if err := nonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return quantities(qc, in.Weight, in.Volume)
}

func validateParcel(in *model.ParcelInput, qc quantityChecker) error {
	if err := nonNegative("weight", in.Weight); err != nil {
		return err
	}
	if err := nonNegative("volume", in.Volume); err != nil {
		return err
	}
	return quantities(qc, in.Weight, in.Volume)
}

func quantities(qc quantityChecker, weight, volume float64) error {
	if err := qc.CheckQuantity("weight", weight); err != nil {
		return err
	}
	return qc.CheckQuantity("volume", volume)
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be a non-negative number, got %v", name, v)
	}
	return nil
}
