package planner

import (
	"math"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

// Quotas holds each family's fair-share duty count for one run
type Quotas map[model.FamilyID]int

// CalculateQuotas computes the fair-share quota of every family.
//
// With a mixed population the couple quota X and single quota Y = X-1 solve
// couples*X + singles*Y = availableDays. Y is rounded down and X is rounded up
// to at least Y+1, so single parents never round up past their share.
// Homogeneous populations split the days evenly with ordinary rounding.
//
// Only the single-parent value is enforced later (as a hard ceiling); for
// couples the quota is just a priority signal.
func CalculateQuotas(families []model.Family, availableDays int) Quotas {
	quotas := make(Quotas, len(families))

	singles, couples := countHouseholds(families)

	var singleQuota, coupleQuota int
	switch {
	case singles > 0 && couples > 0:
		x := float64(availableDays+singles) / float64(couples+singles)
		singleQuota = max(1, int(math.Floor(x-1)))
		coupleQuota = max(singleQuota+1, int(math.Ceil(x)))
	case couples > 0:
		coupleQuota = max(1, int(math.Round(float64(availableDays)/float64(couples))))
	case singles > 0:
		singleQuota = max(1, int(math.Round(float64(availableDays)/float64(singles))))
	}

	for _, family := range families {
		if family.IsSingleParent() {
			quotas[family.ID] = singleQuota
		} else {
			quotas[family.ID] = coupleQuota
		}
	}

	return quotas
}

// countHouseholds returns the number of single-parent and two-parent families
func countHouseholds(families []model.Family) (singles, couples int) {
	for _, family := range families {
		if family.IsSingleParent() {
			singles++
		} else {
			couples++
		}
	}
	return singles, couples
}
