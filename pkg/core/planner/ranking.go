package planner

import (
	"cmp"
	"slices"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

// Tier identifies which fallback stage produced the candidate set for a day
type Tier int

const (
	// TierNone means no family is available at all
	TierNone Tier = iota
	// TierTarget requires the preferred spacing
	TierTarget
	// TierMinimum requires only the minimum spacing
	TierMinimum
	// TierEmergency ignores spacing
	TierEmergency
	// TierLastResort ignores spacing and the single-parent ceiling
	TierLastResort
)

func (t Tier) String() string {
	switch t {
	case TierTarget:
		return "target"
	case TierMinimum:
		return "minimum"
	case TierEmergency:
		return "emergency"
	case TierLastResort:
		return "last-resort"
	default:
		return "none"
	}
}

// rankingContext is the read-only data the eligibility and ranking steps need
type rankingContext struct {
	families     []model.Family
	availability map[model.FamilyID]model.DateSet
	quotas       Quotas
	intervals    Intervals
	priorLoads   map[model.FamilyID]model.PriorLoad
}

// atCeiling reports whether a single-parent family has used up its quota
func (rc *rankingContext) atCeiling(state *assignmentState, family model.Family) bool {
	return family.IsSingleParent() && state.counts[family.ID] >= rc.quotas[family.ID]
}

// eligibleFamilies builds the candidate set for date through the four fallback tiers.
// Each tier is only consulted when the previous one is empty.
func (rc *rankingContext) eligibleFamilies(state *assignmentState, date model.Date) ([]model.Family, Tier) {
	available := make([]model.Family, 0, len(rc.families))
	for _, family := range rc.families {
		if rc.availability[family.ID].Contains(date) {
			available = append(available, family)
		}
	}
	if len(available) == 0 {
		return nil, TierNone
	}

	underCeiling := make([]model.Family, 0, len(available))
	for _, family := range available {
		if !rc.atCeiling(state, family) {
			underCeiling = append(underCeiling, family)
		}
	}

	spaced := func(minGap int) []model.Family {
		out := make([]model.Family, 0, len(underCeiling))
		for _, family := range underCeiling {
			if !state.seenBefore(family.ID) || state.gap(family.ID, date) >= minGap {
				out = append(out, family)
			}
		}
		return out
	}

	if candidates := spaced(rc.intervals.Target); len(candidates) > 0 {
		return candidates, TierTarget
	}
	if candidates := spaced(rc.intervals.Minimum); len(candidates) > 0 {
		return candidates, TierMinimum
	}
	if len(underCeiling) > 0 {
		return underCeiling, TierEmergency
	}
	return available, TierLastResort
}

// totalLoad is last year's count (or the quota for newcomers) plus this year's count
func (rc *rankingContext) totalLoad(state *assignmentState, id model.FamilyID) int {
	prior := rc.quotas[id]
	if load, ok := rc.priorLoads[id]; ok {
		prior = load.Count
	}
	return prior + state.counts[id]
}

// compareCandidates orders two candidates for date; the smaller one wins.
//
// Precedence:
//  1. a single parent at its ceiling loses against anyone who is not
//  2. longer gap since the last duty
//  3. lower total load across both years
//  4. still under its own quota
//  5. fewer duties this year
//  6. family ID
func (rc *rankingContext) compareCandidates(state *assignmentState, date model.Date, a, b model.Family) int {
	capA := rc.atCeiling(state, a)
	capB := rc.atCeiling(state, b)
	if capA && !capB {
		return 1
	}
	if capB && !capA {
		return -1
	}

	if c := cmp.Compare(state.gap(b.ID, date), state.gap(a.ID, date)); c != 0 {
		return c
	}

	if c := cmp.Compare(rc.totalLoad(state, a.ID), rc.totalLoad(state, b.ID)); c != 0 {
		return c
	}

	underA := state.counts[a.ID] < rc.quotas[a.ID]
	underB := state.counts[b.ID] < rc.quotas[b.ID]
	if underA && !underB {
		return -1
	}
	if underB && !underA {
		return 1
	}

	if c := cmp.Compare(state.counts[a.ID], state.counts[b.ID]); c != 0 {
		return c
	}

	return cmp.Compare(a.ID, b.ID)
}

// rankCandidates sorts candidates best first
func (rc *rankingContext) rankCandidates(state *assignmentState, date model.Date, candidates []model.Family) {
	slices.SortStableFunc(candidates, func(a, b model.Family) int {
		return rc.compareCandidates(state, date, a, b)
	})
}
