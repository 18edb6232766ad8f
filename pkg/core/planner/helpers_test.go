package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

func couple(id string) model.Family {
	return model.Family{ID: model.FamilyID(id), Name: "Familie " + id, ParentCount: 2}
}

func single(id string) model.Family {
	return model.Family{ID: model.FamilyID(id), Name: "Familie " + id, ParentCount: 1}
}

func couples(n int) []model.Family {
	families := make([]model.Family, n)
	for i := range families {
		families[i] = couple(fmt.Sprintf("c%02d", i+1))
	}
	return families
}

func singles(n int) []model.Family {
	families := make([]model.Family, n)
	for i := range families {
		families[i] = single(fmt.Sprintf("s%02d", i+1))
	}
	return families
}

func schoolYear(startYear int) model.Year {
	return model.Year{
		Start: model.NewDate(startYear, 9, 1),
		End:   model.NewDate(startYear+1, 8, 31),
	}
}

// weekendsOnly returns the calendar of a year without holidays and vacations
func weekendsOnly(year model.Year) ExcludedCalendar {
	return BuildExcludedCalendar(year, nil, nil)
}

// fullAvailability makes every family available on every non-excluded day
func fullAvailability(year model.Year, excluded ExcludedCalendar, families []model.Family) map[model.FamilyID]model.DateSet {
	days := AvailableDays(year, excluded)
	availability := make(map[model.FamilyID]model.DateSet, len(families))
	for _, family := range families {
		availability[family.ID] = model.NewDateSet(days...)
	}
	return availability
}

func countByFamily(assignments []model.Assignment) map[model.FamilyID]int {
	counts := make(map[model.FamilyID]int)
	for _, assignment := range assignments {
		counts[assignment.FamilyID]++
	}
	return counts
}

// requireValidPlan checks the invariants every generated plan must satisfy
func requireValidPlan(t *testing.T, input PlanInput, result *PlanResult) {
	t.Helper()

	booked := make(map[model.Date]model.FamilyID)
	for _, manual := range input.ManualAssignments {
		booked[manual.Date] = manual.FamilyID
	}

	for _, assignment := range result.Assignments {
		require.False(t, assignment.IsManual, "generated assignment on %s is marked manual", assignment.Date)
		require.False(t, input.Excluded.IsExcluded(assignment.Date), "assignment on excluded date %s", assignment.Date)
		require.True(t, input.Year.Contains(assignment.Date), "assignment on %s outside the year", assignment.Date)
		require.True(t, input.Availability[assignment.FamilyID].Contains(assignment.Date),
			"family %s assigned on %s without availability", assignment.FamilyID, assignment.Date)

		other, taken := booked[assignment.Date]
		require.False(t, taken, "date %s booked twice (%s and %s)", assignment.Date, other, assignment.FamilyID)
		booked[assignment.Date] = assignment.FamilyID
	}
}
