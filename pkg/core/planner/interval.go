package planner

import (
	"math"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

const (
	// MinTargetSpacingDays is the floor of the preferred spacing
	MinTargetSpacingDays = 7

	// MinMinimumSpacingDays is the floor of the minimum spacing
	MinMinimumSpacingDays = 4

	// TargetSpacingFactor scales the average pair spacing into the preferred spacing
	TargetSpacingFactor = 0.8

	// MinimumSpacingFactor scales the average pair spacing into the minimum spacing
	MinimumSpacingFactor = 0.5
)

// Intervals are the run-wide spacing thresholds in calendar days
type Intervals struct {
	Target  int `json:"target"`
	Minimum int `json:"minimum"`
}

// CalculateIntervals derives the target and minimum spacing between two duties
// of the same family from the average gap a weight-2 family would see if the
// available days were spread perfectly evenly over the total weight.
func CalculateIntervals(families []model.Family, availableDays int) Intervals {
	totalWeight := 0
	for _, family := range families {
		totalWeight += family.Weight()
	}

	avgPairSpacing := 0
	if totalWeight > 0 && availableDays > 0 {
		perWeightUnit := float64(availableDays) / float64(totalWeight)
		avgPairSpacing = int(math.Floor(float64(availableDays) / (perWeightUnit * 2)))
	}

	intervals := Intervals{
		Target:  max(MinTargetSpacingDays, int(float64(avgPairSpacing)*TargetSpacingFactor)),
		Minimum: max(MinMinimumSpacingDays, int(float64(avgPairSpacing)*MinimumSpacingFactor)),
	}

	if intervals.Minimum > intervals.Target {
		intervals.Minimum = intervals.Target
	}

	return intervals
}
