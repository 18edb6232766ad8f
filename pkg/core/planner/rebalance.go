package planner

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

// RebalanceMinSpacingDays is the fixed spacing between two duties handed to a newcomer
const RebalanceMinSpacingDays = 4

const (
	ConflictNoAvailability = "Die neue Familie hat noch keine Verfügbarkeit eingetragen."
	ConflictNothingToMove  = "Keine passenden Zuweisungen zum Übertragen gefunden. Bitte Plan ggf. komplett neu generieren."
	ConflictNoOtherFamily  = "Keine anderen Familien vorhanden."
)

// Reassignment moves the duty on Date from one family to another
type Reassignment struct {
	Date model.Date
	From model.FamilyID
	To   model.FamilyID
}

// AddFamilyInput is the snapshot for handing duties to a family joining mid-year
type AddFamilyInput struct {
	Year     model.Year
	Excluded ExcludedCalendar

	// Families is the current population including the newcomer
	Families []model.Family

	// Assignments is the persisted plan of the year (manual and generated)
	Assignments []model.Assignment

	NewFamily model.FamilyID

	// NewAvailability is nil when the newcomer has not entered availability yet
	NewAvailability model.DateSet

	// Today separates history (on or before) from the future (after)
	Today model.Date
}

// AddFamilyResult lists the duties transferred to the newcomer
type AddFamilyResult struct {
	Target      int
	Transferred int
	Transfers   []Reassignment
	Conflicts   []string
}

// RemoveFamilyInput is the snapshot for redistributing the duties of a leaving family
type RemoveFamilyInput struct {
	Year     model.Year
	Excluded ExcludedCalendar

	// Families is the current population including the leaving family
	Families []model.Family

	Availability map[model.FamilyID]model.DateSet
	Assignments  []model.Assignment

	Removed model.FamilyID
	Today   model.Date
}

// RemoveFamilyResult lists what happened to each future duty of the leaving family
type RemoveFamilyResult struct {
	Redistributed int
	Removed       int
	Reassignments []Reassignment
	Deletions     []model.Date
	Conflicts     []string
}

// AddFamily hands future generated duties of the most loaded families to a newcomer.
//
// Donors are visited by current count, highest first; a donor at or below the
// floor average is skipped. Each donor's future non-manual duties are offered
// in date order and taken until the target is reached, as long as the
// newcomer is available and the date is at least RebalanceMinSpacingDays away
// from the most recent transfer.
// The total number of duties never changes.
func AddFamily(input AddFamilyInput) (*AddFamilyResult, error) {
	known, err := familyIndex(input.Families)
	if err != nil {
		return nil, err
	}
	if !known[input.NewFamily] {
		return nil, fmt.Errorf("%w: new family %q is not part of the population", ErrInvalidInput, input.NewFamily)
	}
	if err := checkAssignments(known, input.Assignments); err != nil {
		return nil, err
	}

	result := &AddFamilyResult{
		Transfers: []Reassignment{},
		Conflicts: []string{},
	}

	if input.NewAvailability == nil {
		result.Conflicts = append(result.Conflicts, ConflictNoAvailability)
		return result, nil
	}

	var newcomer model.Family
	for _, family := range input.Families {
		if family.ID == input.NewFamily {
			newcomer = family
		}
	}

	availableDays := CountAvailableDays(input.Year, input.Excluded)
	population := len(input.Families)
	result.Target = newcomerTarget(newcomer, availableDays, population)
	donorFloor := max(1, int(math.Floor(float64(availableDays)/float64(population))))

	counts := make(map[model.FamilyID]int, population)
	futureByFamily := make(map[model.FamilyID][]model.Date)
	for _, assignment := range input.Assignments {
		counts[assignment.FamilyID]++
		if assignment.Date.After(input.Today) && !assignment.IsManual {
			futureByFamily[assignment.FamilyID] = append(futureByFamily[assignment.FamilyID], assignment.Date)
		}
	}

	donors := slices.Clone(input.Families)
	slices.SortStableFunc(donors, func(a, b model.Family) int {
		if c := cmp.Compare(counts[b.ID], counts[a.ID]); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	var lastTransfer model.Date

	for _, donor := range donors {
		if result.Transferred >= result.Target {
			break
		}
		if donor.ID == input.NewFamily {
			continue
		}
		if counts[donor.ID] <= donorFloor {
			continue
		}

		dates := futureByFamily[donor.ID]
		slices.SortFunc(dates, model.Date.Compare)

		for _, date := range dates {
			if result.Transferred >= result.Target {
				break
			}
			if !input.NewAvailability.Contains(date) {
				continue
			}
			if !lastTransfer.IsZero() && model.DaysBetween(lastTransfer, date) < RebalanceMinSpacingDays {
				continue
			}

			result.Transfers = append(result.Transfers, Reassignment{Date: date, From: donor.ID, To: input.NewFamily})
			result.Transferred++
			lastTransfer = date

			counts[donor.ID]--
			counts[input.NewFamily]++
		}
	}

	switch {
	case result.Transferred == 0:
		result.Conflicts = append(result.Conflicts, ConflictNothingToMove)
	case result.Transferred < result.Target:
		result.Conflicts = append(result.Conflicts, fmt.Sprintf(
			"Nur %d von %d geplanten Diensten konnten übertragen werden. Ggf. Plan komplett neu generieren.",
			result.Transferred, result.Target))
	}

	return result, nil
}

// newcomerTarget is the standalone fair share of a family joining a population of the given size
func newcomerTarget(family model.Family, availableDays, population int) int {
	if population == 0 {
		return 0
	}
	if family.IsSingleParent() {
		return max(1, int(math.Floor(float64(availableDays)/float64(population)))-1)
	}
	return max(1, int(math.Round(float64(availableDays)/float64(population))))
}

// RemoveFamily redistributes the future duties of a leaving family.
//
// Past duties stay untouched. Every future duty goes to the available family
// with the longest gap to its nearest tracked duty, then the lowest count.
// Duties nobody can take are deleted and reported.
func RemoveFamily(input RemoveFamilyInput) (*RemoveFamilyResult, error) {
	known, err := familyIndex(input.Families)
	if err != nil {
		return nil, err
	}
	if !known[input.Removed] {
		return nil, fmt.Errorf("%w: removed family %q is not part of the population", ErrInvalidInput, input.Removed)
	}
	if err := checkAssignments(known, input.Assignments); err != nil {
		return nil, err
	}
	for id := range input.Availability {
		if !known[id] {
			return nil, fmt.Errorf("%w: availability references unknown family %q", ErrInvalidInput, id)
		}
	}

	result := &RemoveFamilyResult{
		Reassignments: []Reassignment{},
		Deletions:     []model.Date{},
		Conflicts:     []string{},
	}

	others := make([]model.Family, 0, len(input.Families))
	for _, family := range input.Families {
		if family.ID != input.Removed {
			others = append(others, family)
		}
	}
	if len(others) == 0 {
		result.Conflicts = append(result.Conflicts, ConflictNoOtherFamily)
		return result, nil
	}

	state := newAssignmentState()
	var orphaned []model.Date
	for _, assignment := range input.Assignments {
		state.counts[assignment.FamilyID]++
		if assignment.FamilyID == input.Removed {
			if assignment.Date.After(input.Today) {
				orphaned = append(orphaned, assignment.Date)
			}
			continue
		}
		state.touchIfLater(assignment.FamilyID, assignment.Date)
	}
	slices.SortFunc(orphaned, model.Date.Compare)

	for _, date := range orphaned {
		candidates := make([]model.Family, 0, len(others))
		for _, family := range others {
			if input.Availability[family.ID].Contains(date) {
				candidates = append(candidates, family)
			}
		}

		if len(candidates) == 0 {
			result.Deletions = append(result.Deletions, date)
			result.Removed++
			result.Conflicts = append(result.Conflicts,
				fmt.Sprintf("Keine Ersatzfamilie für %s gefunden — Zuweisung gelöscht.", date.German()))
			continue
		}

		slices.SortStableFunc(candidates, func(a, b model.Family) int {
			if c := cmp.Compare(state.gap(b.ID, date), state.gap(a.ID, date)); c != 0 {
				return c
			}
			if c := cmp.Compare(state.counts[a.ID], state.counts[b.ID]); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})

		winner := candidates[0]
		result.Reassignments = append(result.Reassignments, Reassignment{Date: date, From: input.Removed, To: winner.ID})
		result.Redistributed++
		state.record(winner.ID, date)
	}

	if result.Removed > 0 {
		result.Conflicts = append(result.Conflicts,
			fmt.Sprintf("%d Zuweisungen konnten nicht umverteilt werden und wurden gelöscht.", result.Removed))
	}

	return result, nil
}

// checkAssignments rejects plans that reference unknown families or book a date twice
func checkAssignments(known map[model.FamilyID]bool, assignments []model.Assignment) error {
	seen := make(map[model.Date]bool, len(assignments))
	for _, assignment := range assignments {
		if !known[assignment.FamilyID] {
			return fmt.Errorf("%w: assignment on %s references unknown family %q", ErrInvalidInput, assignment.Date, assignment.FamilyID)
		}
		if seen[assignment.Date] {
			return fmt.Errorf("%w: date %s is booked twice", ErrInvalidInput, assignment.Date)
		}
		seen[assignment.Date] = true
	}
	return nil
}
