package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

func newTestRankingContext(families []model.Family, date model.Date) *rankingContext {
	availability := make(map[model.FamilyID]model.DateSet, len(families))
	for _, family := range families {
		availability[family.ID] = model.NewDateSet(date)
	}
	quotas := make(Quotas, len(families))
	for _, family := range families {
		quotas[family.ID] = 10
	}
	return &rankingContext{
		families:     families,
		availability: availability,
		quotas:       quotas,
		intervals:    Intervals{Target: 7, Minimum: 4},
		priorLoads:   map[model.FamilyID]model.PriorLoad{},
	}
}

func familyIDs(families []model.Family) []model.FamilyID {
	ids := make([]model.FamilyID, len(families))
	for i, family := range families {
		ids[i] = family.ID
	}
	return ids
}

func TestEligibleFamilies_Tiers(t *testing.T) {
	date := model.MustParseDate("2025-09-15")

	tests := []struct {
		name      string
		lastDates map[model.FamilyID]int
		expected  []model.FamilyID
		tier      Tier
	}{
		{
			name:      "never assigned is always in target tier",
			lastDates: map[model.FamilyID]int{"c01": 1},
			expected:  []model.FamilyID{"c02"},
			tier:      TierTarget,
		},
		{
			name:      "target spacing reached",
			lastDates: map[model.FamilyID]int{"c01": 7, "c02": 6},
			expected:  []model.FamilyID{"c01"},
			tier:      TierTarget,
		},
		{
			name:      "only minimum spacing reached",
			lastDates: map[model.FamilyID]int{"c01": 5, "c02": 4},
			expected:  []model.FamilyID{"c01", "c02"},
			tier:      TierMinimum,
		},
		{
			name:      "spacing dropped",
			lastDates: map[model.FamilyID]int{"c01": 3, "c02": 1},
			expected:  []model.FamilyID{"c01", "c02"},
			tier:      TierEmergency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := newTestRankingContext(couples(2), date)
			state := newAssignmentState()
			for id, daysAgo := range tt.lastDates {
				state.record(id, date.AddDays(-daysAgo))
			}

			candidates, tier := rc.eligibleFamilies(state, date)
			assert.Equal(t, tt.tier, tier)
			assert.ElementsMatch(t, tt.expected, familyIDs(candidates))
		})
	}
}

func TestEligibleFamilies_SingleParentCeiling(t *testing.T) {
	date := model.MustParseDate("2025-09-15")
	families := []model.Family{couple("c01"), single("s01")}
	rc := newTestRankingContext(families, date)
	rc.quotas["s01"] = 2

	state := newAssignmentState()
	state.record("s01", date.AddDays(-30))
	state.record("s01", date.AddDays(-20))
	state.record("c01", date.AddDays(-1))

	// s01 has the better gap but is capped, so the couple is used despite its spacing
	candidates, tier := rc.eligibleFamilies(state, date)
	assert.Equal(t, TierEmergency, tier)
	assert.Equal(t, []model.FamilyID{"c01"}, familyIDs(candidates))

	// Without the couple only the last resort is left
	rc.availability["c01"] = nil
	candidates, tier = rc.eligibleFamilies(state, date)
	assert.Equal(t, TierLastResort, tier)
	assert.Equal(t, []model.FamilyID{"s01"}, familyIDs(candidates))
}

func TestEligibleFamilies_NobodyAvailable(t *testing.T) {
	date := model.MustParseDate("2025-09-15")
	rc := newTestRankingContext(couples(2), date)

	candidates, tier := rc.eligibleFamilies(newAssignmentState(), date.AddDays(1))
	assert.Equal(t, TierNone, tier)
	assert.Empty(t, candidates)
}

func TestRankCandidates(t *testing.T) {
	date := model.MustParseDate("2025-09-15")

	t.Run("longer gap wins over lower load", func(t *testing.T) {
		rc := newTestRankingContext(couples(2), date)
		rc.priorLoads["c01"] = model.PriorLoad{Count: 40}
		state := newAssignmentState()
		state.record("c01", date.AddDays(-9))
		state.record("c02", date.AddDays(-8))

		candidates := couples(2)
		rc.rankCandidates(state, date, candidates)
		assert.Equal(t, []model.FamilyID{"c01", "c02"}, familyIDs(candidates))
	})

	t.Run("equal gap falls back to total load", func(t *testing.T) {
		rc := newTestRankingContext(couples(2), date)
		rc.priorLoads["c01"] = model.PriorLoad{Count: 40}
		rc.priorLoads["c02"] = model.PriorLoad{Count: 30}

		candidates := couples(2)
		rc.rankCandidates(newAssignmentState(), date, candidates)
		assert.Equal(t, []model.FamilyID{"c02", "c01"}, familyIDs(candidates))
	})

	t.Run("newcomer load defaults to quota", func(t *testing.T) {
		rc := newTestRankingContext(couples(2), date)
		rc.priorLoads["c01"] = model.PriorLoad{Count: 11}

		candidates := couples(2)
		rc.rankCandidates(newAssignmentState(), date, candidates)
		assert.Equal(t, []model.FamilyID{"c02", "c01"}, familyIDs(candidates))
	})

	t.Run("capped single parent loses to anyone", func(t *testing.T) {
		families := []model.Family{single("a"), couple("b")}
		rc := newTestRankingContext(families, date)
		rc.quotas["a"] = 1
		state := newAssignmentState()
		state.record("a", date.AddDays(-100))
		state.record("b", date.AddDays(-1))

		rc.rankCandidates(state, date, families)
		assert.Equal(t, []model.FamilyID{"b", "a"}, familyIDs(families))
	})

	t.Run("family ID is the final tie-break", func(t *testing.T) {
		rc := newTestRankingContext(couples(3), date)
		candidates := []model.Family{couple("c03"), couple("c01"), couple("c02")}

		rc.rankCandidates(newAssignmentState(), date, candidates)
		assert.Equal(t, []model.FamilyID{"c01", "c02", "c03"}, familyIDs(candidates))
	})
}
