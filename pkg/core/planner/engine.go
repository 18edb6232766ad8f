package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

// ErrInvalidInput marks structurally invalid input (an integration error, not a scheduling conflict)
var ErrInvalidInput = errors.New("invalid planner input")

const (
	// ConflictNoFamilies is reported when a run starts without any family
	ConflictNoFamilies = "Keine Familien vorhanden."

	hardConflictPrefix = "FEHLER"
)

// PlanInput is the read-only snapshot one generation run works on
type PlanInput struct {
	Year     model.Year
	Families []model.Family

	// Availability lists the dates each family is willing to cook; a missing entry means none
	Availability map[model.FamilyID]model.DateSet

	Excluded ExcludedCalendar

	// PriorLoads carries last year's load; a missing entry means no history
	PriorLoads map[model.FamilyID]model.PriorLoad

	// ManualAssignments are operator-placed duties that must be kept as they are
	ManualAssignments []model.Assignment
}

// DayDecision records how a single day was filled (useful for diagnostics)
type DayDecision struct {
	Date     model.Date
	Tier     Tier
	FamilyID model.FamilyID
}

// PlanResult is the outcome of a generation run
type PlanResult struct {
	// Assignments contains only newly generated duties; manual ones are not re-emitted
	Assignments []model.Assignment

	// Conflicts are human-readable warnings in the order they occurred
	Conflicts []string

	Quotas        Quotas
	Intervals     Intervals
	AvailableDays int

	// Decisions has one entry per walked day that was not manually occupied
	Decisions []DayDecision
}

// IsHardConflict reports whether a conflict message describes an unfilled day
func IsHardConflict(conflict string) bool {
	return strings.HasPrefix(conflict, hardConflictPrefix)
}

// Generate assigns one family to every available day of the year.
//
// Days are walked chronologically; each day picks the best candidate from the
// first non-empty fallback tier. Scheduling difficulties never fail the run:
// they degrade to conflict messages. Only structurally invalid input returns an error.
func Generate(input PlanInput) (*PlanResult, error) {
	if err := validatePlanInput(input); err != nil {
		return nil, err
	}

	result := &PlanResult{
		Assignments: []model.Assignment{},
		Conflicts:   []string{},
		Decisions:   []DayDecision{},
	}

	if len(input.Families) == 0 {
		result.Conflicts = append(result.Conflicts, ConflictNoFamilies)
		return result, nil
	}

	days := AvailableDays(input.Year, input.Excluded)
	result.AvailableDays = len(days)
	result.Quotas = CalculateQuotas(input.Families, result.AvailableDays)
	result.Intervals = CalculateIntervals(input.Families, result.AvailableDays)

	rc := &rankingContext{
		families:     input.Families,
		availability: input.Availability,
		quotas:       result.Quotas,
		intervals:    result.Intervals,
		priorLoads:   input.PriorLoads,
	}

	state, manualByDate := seedState(input)

	for _, date := range days {
		if manual, ok := manualByDate[date]; ok {
			state.touch(manual.FamilyID, date)
			continue
		}

		decision, conflict := assignDay(rc, state, date)
		result.Decisions = append(result.Decisions, decision)
		if conflict != "" {
			result.Conflicts = append(result.Conflicts, conflict)
		}
		if decision.Tier == TierNone {
			continue
		}

		result.Assignments = append(result.Assignments, model.Assignment{
			FamilyID: decision.FamilyID,
			Date:     date,
			IsManual: false,
		})
	}

	return result, nil
}

// seedState initialises counts from manual assignments and last dates from
// the prior year, moved forward by any later manual assignment
func seedState(input PlanInput) (*assignmentState, map[model.Date]model.Assignment) {
	state := newAssignmentState()

	for id, load := range input.PriorLoads {
		if !load.LastDate.IsZero() {
			state.lastDate[id] = load.LastDate
		}
	}

	manualByDate := make(map[model.Date]model.Assignment, len(input.ManualAssignments))
	for _, manual := range input.ManualAssignments {
		manualByDate[manual.Date] = manual
		state.counts[manual.FamilyID]++
		state.touchIfLater(manual.FamilyID, manual.Date)
	}

	return state, manualByDate
}

// assignDay picks and books the winner for one day, returning the decision and
// the conflict message of the tier that was used (empty when none applies)
func assignDay(rc *rankingContext, state *assignmentState, date model.Date) (DayDecision, string) {
	candidates, tier := rc.eligibleFamilies(state, date)
	decision := DayDecision{Date: date, Tier: tier}

	var conflict string
	switch tier {
	case TierNone:
		return decision, fmt.Sprintf("FEHLER: Keine Familie hat Verfügbarkeit für %s angegeben!", date.German())
	case TierEmergency:
		conflict = fmt.Sprintf("Notfall-Zuweisung am %s: Abstände können nicht eingehalten werden.", date.German())
	case TierLastResort:
		conflict = fmt.Sprintf("Notfall-Zuweisung am %s: Alleinerziehenden-Limit überschritten.", date.German())
	}

	rc.rankCandidates(state, date, candidates)
	winner := candidates[0]
	state.record(winner.ID, date)
	decision.FamilyID = winner.ID

	return decision, conflict
}

// validatePlanInput rejects input that references unknown families or is otherwise malformed
func validatePlanInput(input PlanInput) error {
	if input.Year.End.Before(input.Year.Start) {
		return fmt.Errorf("%w: year ends (%s) before it starts (%s)", ErrInvalidInput, input.Year.End, input.Year.Start)
	}

	known, err := familyIndex(input.Families)
	if err != nil {
		return err
	}

	for id := range input.Availability {
		if !known[id] {
			return fmt.Errorf("%w: availability references unknown family %q", ErrInvalidInput, id)
		}
	}

	for id := range input.PriorLoads {
		if !known[id] {
			return fmt.Errorf("%w: prior load references unknown family %q", ErrInvalidInput, id)
		}
	}

	manualDates := make(map[model.Date]model.FamilyID, len(input.ManualAssignments))
	for _, manual := range input.ManualAssignments {
		if !known[manual.FamilyID] {
			return fmt.Errorf("%w: manual assignment on %s references unknown family %q", ErrInvalidInput, manual.Date, manual.FamilyID)
		}
		if other, dup := manualDates[manual.Date]; dup {
			return fmt.Errorf("%w: two manual assignments on %s (%q and %q)", ErrInvalidInput, manual.Date, other, manual.FamilyID)
		}
		manualDates[manual.Date] = manual.FamilyID
	}

	return nil
}

// familyIndex checks family records and returns the set of known IDs
func familyIndex(families []model.Family) (map[model.FamilyID]bool, error) {
	known := make(map[model.FamilyID]bool, len(families))
	for _, family := range families {
		if family.ID == "" {
			return nil, fmt.Errorf("%w: family with empty ID", ErrInvalidInput)
		}
		if family.ParentCount < 1 || family.ParentCount > 2 {
			return nil, fmt.Errorf("%w: family %q has %d parents (must be 1 or 2)", ErrInvalidInput, family.ID, family.ParentCount)
		}
		if known[family.ID] {
			return nil, fmt.Errorf("%w: duplicate family %q", ErrInvalidInput, family.ID)
		}
		known[family.ID] = true
	}
	return known, nil
}
