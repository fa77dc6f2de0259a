package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/guimove/trainfit/internal/model"
)

// Load report thresholds.
const (
	// A carrier below this fill on either dimension is underutilized.
	LowUtilThreshold = 0.50

	// Warn when more than this fraction of carriers is underutilized.
	UnderutilizedWarnFraction = 0.30

	// Warn when weight and volume fill diverge this much on average.
	LowBalanceScore = 0.60
)

// AnalyzeLoads computes fill metrics for the carriers used by a result.
func AnalyzeLoads(loads []model.CarrierLoad) model.LoadReport {
	if len(loads) == 0 {
		return model.LoadReport{BalanceScore: 1.0}
	}

	weightUtil := make([]float64, len(loads))
	volumeUtil := make([]float64, len(loads))
	balance := make([]float64, len(loads))
	var underutilized int

	for i := range loads {
		w := loads[i].WeightUtilization()
		v := loads[i].VolumeUtilization()
		weightUtil[i] = w
		volumeUtil[i] = v

		if w < LowUtilThreshold || v < LowUtilThreshold {
			underutilized++
		}

		// How close weight% and volume% are
		balance[i] = 1.0 - math.Min(1.0, math.Abs(w-v))
	}

	return model.LoadReport{
		AvgWeightUtilization:  stat.Mean(weightUtil, nil),
		AvgVolumeUtilization:  stat.Mean(volumeUtil, nil),
		UnderutilizedFraction: float64(underutilized) / float64(len(loads)),
		BalanceScore:          stat.Mean(balance, nil),
	}
}

// LoadWarnings lists what an operator should look at in a result.
func LoadWarnings(res *model.Result, lr model.LoadReport) []string {
	var warnings []string
	if res == nil {
		return nil
	}

	if n := len(res.Unassigned); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d parcels could not be assigned", n))
	}
	if lr.UnderutilizedFraction > UnderutilizedWarnFraction {
		warnings = append(warnings,
			fmt.Sprintf("%.0f%% of trains are underutilized (<%d%% on one dimension)",
				lr.UnderutilizedFraction*100, int(LowUtilThreshold*100)))
	}
	if len(res.Loads) > 0 && lr.BalanceScore < LowBalanceScore {
		warnings = append(warnings,
			fmt.Sprintf("Weight and volume fill are unbalanced (balance score %.2f)", lr.BalanceScore))
	}
	return warnings
}
