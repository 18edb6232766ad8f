package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jakechorley/cooking-rota/pkg/db"
)

// Store is an in-memory db.Database with the same uniqueness rules as the postgres schema
type Store struct {
	mu sync.Mutex

	Years          []db.Year
	Holidays       []db.Holiday
	Vacations      []db.Vacation
	Families       []db.Family
	Availabilities []db.Availability
	Assignments    []db.Assignment
	PriorLoads     []db.PriorLoad

	// Errors makes the named method fail with the given error
	Errors map[string]error

	// AppliedChanges records every successful ApplyPlanChanges call
	AppliedChanges []db.PlanChanges
}

var _ db.Database = (*Store)(nil)

func NewStore() *Store {
	return &Store{Errors: make(map[string]error)}
}

func (s *Store) fail(method string) error {
	if s.Errors == nil {
		return nil
	}
	return s.Errors[method]
}

func (s *Store) GetYears(ctx context.Context) ([]db.Year, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetYears"); err != nil {
		return nil, err
	}
	return slices.Clone(s.Years), nil
}

func (s *Store) InsertYear(ctx context.Context, year *db.Year) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertYear"); err != nil {
		return err
	}
	s.Years = append(s.Years, *year)
	return nil
}

func (s *Store) SetActiveYear(ctx context.Context, yearID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SetActiveYear"); err != nil {
		return err
	}
	found := false
	for i := range s.Years {
		s.Years[i].Active = s.Years[i].ID == yearID
		found = found || s.Years[i].Active
	}
	if !found {
		return fmt.Errorf("year %s not found", yearID)
	}
	return nil
}

func (s *Store) GetHolidays(ctx context.Context, yearID string) ([]db.Holiday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetHolidays"); err != nil {
		return nil, err
	}
	holidays := make([]db.Holiday, 0)
	for _, h := range s.Holidays {
		if h.YearID == yearID {
			holidays = append(holidays, h)
		}
	}
	return holidays, nil
}

func (s *Store) InsertHolidays(ctx context.Context, holidays []db.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertHolidays"); err != nil {
		return err
	}
	s.Holidays = append(s.Holidays, holidays...)
	return nil
}

func (s *Store) DeleteHolidays(ctx context.Context, yearID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteHolidays"); err != nil {
		return err
	}
	s.Holidays = slices.DeleteFunc(s.Holidays, func(h db.Holiday) bool { return h.YearID == yearID })
	return nil
}

func (s *Store) GetVacations(ctx context.Context, yearID string) ([]db.Vacation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetVacations"); err != nil {
		return nil, err
	}
	vacations := make([]db.Vacation, 0)
	for _, v := range s.Vacations {
		if v.YearID == yearID {
			vacations = append(vacations, v)
		}
	}
	return vacations, nil
}

func (s *Store) InsertVacation(ctx context.Context, vacation *db.Vacation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertVacation"); err != nil {
		return err
	}
	s.Vacations = append(s.Vacations, *vacation)
	return nil
}

func (s *Store) GetFamilies(ctx context.Context) ([]db.Family, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetFamilies"); err != nil {
		return nil, err
	}
	return slices.Clone(s.Families), nil
}

func (s *Store) InsertFamily(ctx context.Context, family *db.Family) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertFamily"); err != nil {
		return err
	}
	s.Families = append(s.Families, *family)
	return nil
}

func setFamilyActive(families []db.Family, familyID string, active bool) error {
	for i := range families {
		if families[i].ID == familyID {
			families[i].Active = active
			return nil
		}
	}
	return fmt.Errorf("family %s not found", familyID)
}

// Family returns a copy of the family with the given ID
func (s *Store) Family(familyID string) (db.Family, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.Families {
		if f.ID == familyID {
			return f, true
		}
	}
	return db.Family{}, false
}

func (s *Store) GetAvailability(ctx context.Context, yearID string) ([]db.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetAvailability"); err != nil {
		return nil, err
	}
	availability := make([]db.Availability, 0)
	for _, a := range s.Availabilities {
		if a.YearID == yearID {
			availability = append(availability, a)
		}
	}
	return availability, nil
}

func (s *Store) UpsertAvailability(ctx context.Context, availability *db.Availability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertAvailability"); err != nil {
		return err
	}
	for i := range s.Availabilities {
		if s.Availabilities[i].YearID == availability.YearID && s.Availabilities[i].FamilyID == availability.FamilyID {
			s.Availabilities[i].Dates = slices.Clone(availability.Dates)
			return nil
		}
	}
	s.Availabilities = append(s.Availabilities, *availability)
	return nil
}

func (s *Store) GetAssignments(ctx context.Context, yearID string) ([]db.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetAssignments"); err != nil {
		return nil, err
	}
	assignments := make([]db.Assignment, 0)
	for _, a := range s.Assignments {
		if a.YearID == yearID {
			assignments = append(assignments, a)
		}
	}
	return assignments, nil
}

func (s *Store) insertAssignment(assignment db.Assignment) error {
	for _, existing := range s.Assignments {
		if existing.YearID == assignment.YearID && existing.Date == assignment.Date {
			return fmt.Errorf("date %s is already booked", assignment.Date)
		}
	}
	s.Assignments = append(s.Assignments, assignment)
	return nil
}

func (s *Store) InsertAssignment(ctx context.Context, assignment *db.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertAssignment"); err != nil {
		return err
	}
	return s.insertAssignment(*assignment)
}

func (s *Store) ReplaceGeneratedAssignments(ctx context.Context, yearID string, assignments []db.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ReplaceGeneratedAssignments"); err != nil {
		return err
	}

	previous := s.Assignments
	s.Assignments = slices.DeleteFunc(slices.Clone(s.Assignments), func(a db.Assignment) bool {
		return a.YearID == yearID && !a.IsManual
	})
	for _, assignment := range assignments {
		if err := s.insertAssignment(assignment); err != nil {
			s.Assignments = previous
			return err
		}
	}
	return nil
}

func (s *Store) DeleteAssignments(ctx context.Context, yearID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteAssignments"); err != nil {
		return 0, err
	}
	before := len(s.Assignments)
	s.Assignments = slices.DeleteFunc(s.Assignments, func(a db.Assignment) bool { return a.YearID == yearID })
	return before - len(s.Assignments), nil
}

// ApplyPlanChanges works on copies and only commits them when every edit succeeded
func (s *Store) ApplyPlanChanges(ctx context.Context, changes db.PlanChanges) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ApplyPlanChanges"); err != nil {
		return err
	}

	assignments := slices.Clone(s.Assignments)
	families := slices.Clone(s.Families)

	for _, r := range changes.Reassignments {
		idx := slices.IndexFunc(assignments, func(a db.Assignment) bool { return a.ID == r.AssignmentID })
		if idx < 0 {
			return fmt.Errorf("assignment %s not found", r.AssignmentID)
		}
		assignments[idx].FamilyID = r.FamilyID
		assignments[idx].IsManual = false
	}

	assignments = slices.DeleteFunc(assignments, func(a db.Assignment) bool {
		return slices.Contains(changes.DeletedAssignmentIDs, a.ID)
	})

	for _, inserted := range changes.Inserted {
		for _, existing := range assignments {
			if existing.YearID == inserted.YearID && existing.Date == inserted.Date {
				return fmt.Errorf("date %s is already booked", inserted.Date)
			}
		}
		assignments = append(assignments, inserted)
	}

	if changes.ActivateFamilyID != "" {
		if err := setFamilyActive(families, changes.ActivateFamilyID, true); err != nil {
			return err
		}
	}
	if changes.DeactivateFamilyID != "" {
		if err := setFamilyActive(families, changes.DeactivateFamilyID, false); err != nil {
			return err
		}
	}

	s.Assignments = assignments
	s.Families = families
	s.AppliedChanges = append(s.AppliedChanges, changes)
	return nil
}

func (s *Store) GetPriorLoads(ctx context.Context) ([]db.PriorLoad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetPriorLoads"); err != nil {
		return nil, err
	}
	return slices.Clone(s.PriorLoads), nil
}

func (s *Store) InsertPriorLoad(ctx context.Context, load *db.PriorLoad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertPriorLoad"); err != nil {
		return err
	}
	s.PriorLoads = append(s.PriorLoads, *load)
	return nil
}

func (s *Store) UpdatePriorLoad(ctx context.Context, load *db.PriorLoad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdatePriorLoad"); err != nil {
		return err
	}
	for i := range s.PriorLoads {
		if s.PriorLoads[i].ID == load.ID {
			s.PriorLoads[i] = *load
			return nil
		}
	}
	return fmt.Errorf("prior load %s not found", load.ID)
}

// AssignmentsByDate indexes the assignments of a year by date
func (s *Store) AssignmentsByDate(yearID string) map[string]db.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDate := make(map[string]db.Assignment)
	for _, a := range s.Assignments {
		if a.YearID == yearID {
			byDate[a.Date] = a
		}
	}
	return byDate
}
