package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
	"github.com/jakechorley/cooking-rota/pkg/core/planner"
	"github.com/jakechorley/cooking-rota/pkg/db"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

// ClosureSource expands recurring closure days (team days etc.) for a year
type ClosureSource func(year model.Year) ([]model.Holiday, error)

// Settings carries the installation-wide knobs shared by plan operations
type Settings struct {
	// Closures is optional
	Closures ClosureSource

	// Today separates past from future duties; zero means the current date in Location
	Today    model.Date
	Location *time.Location
}

func (s Settings) today() model.Date {
	if !s.Today.IsZero() {
		return s.Today
	}
	now := time.Now()
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return model.DateOf(now)
}

// PlanStore is the store surface needed to load a plan snapshot
type PlanStore interface {
	db.YearStore
	db.CalendarStore
	db.FamilyStore
	db.AvailabilityStore
	db.AssignmentStore
}

// withYearLock runs fn while holding the plan lock of the year
func withYearLock(ctx context.Context, locker lock.Locker, logger *zap.Logger, yearID string, fn func() error) error {
	key := lock.YearKey(yearID)

	logger.Debug("Acquiring plan lock", zap.String("key", key))
	release, err := locker.Acquire(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to acquire plan lock for year %s: %w", yearID, err)
	}

	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to release plan lock", zap.String("key", key), zap.Error(err))
		}
	}()

	return fn()
}

// ActiveYearID returns the ID of the year marked active
func ActiveYearID(ctx context.Context, database db.YearStore) (string, error) {
	years, err := database.GetYears(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch years: %w", err)
	}
	for _, year := range years {
		if year.Active {
			return year.ID, nil
		}
	}
	return "", ErrNoActiveYear
}

// findYear returns the year with the given ID
func findYear(ctx context.Context, database db.YearStore, yearID string) (*db.Year, model.Year, error) {
	years, err := database.GetYears(ctx)
	if err != nil {
		return nil, model.Year{}, fmt.Errorf("failed to fetch years: %w", err)
	}

	for i := range years {
		if years[i].ID != yearID {
			continue
		}
		span, err := toModelYear(years[i])
		if err != nil {
			return nil, model.Year{}, err
		}
		return &years[i], span, nil
	}

	return nil, model.Year{}, fmt.Errorf("%w: %s", ErrYearNotFound, yearID)
}

func toModelYear(year db.Year) (model.Year, error) {
	start, err := model.ParseDate(year.Start)
	if err != nil {
		return model.Year{}, fmt.Errorf("failed to parse start of year %s: %w", year.ID, err)
	}
	end, err := model.ParseDate(year.End)
	if err != nil {
		return model.Year{}, fmt.Errorf("failed to parse end of year %s: %w", year.ID, err)
	}
	return model.Year{Start: start, End: end}, nil
}

func toModelFamily(family db.Family) model.Family {
	return model.Family{
		ID:          model.FamilyID(family.ID),
		Name:        family.Name,
		ParentCount: family.ParentCount,
	}
}

func toModelAssignment(assignment db.Assignment) (model.Assignment, error) {
	date, err := model.ParseDate(assignment.Date)
	if err != nil {
		return model.Assignment{}, fmt.Errorf("failed to parse assignment %s: %w", assignment.ID, err)
	}
	return model.Assignment{
		FamilyID: model.FamilyID(assignment.FamilyID),
		Date:     date,
		IsManual: assignment.IsManual,
	}, nil
}

func toDateSet(dates []string) (model.DateSet, error) {
	set := model.NewDateSet()
	for _, s := range dates {
		d, err := model.ParseDate(s)
		if err != nil {
			return nil, err
		}
		set.Add(d)
	}
	return set, nil
}

// planSnapshot is everything a plan operation reads about one year
type planSnapshot struct {
	year     db.Year
	span     model.Year
	excluded planner.ExcludedCalendar

	// families holds every family, active or not, in store order
	families []db.Family
	byID     map[string]db.Family

	availability map[model.FamilyID]model.DateSet
	assignments  []db.Assignment
}

// loadSnapshot reads the year, its calendar, the families and the persisted plan.
//
// Manual duties of inactive families stay in the plan; their dates are added to
// the excluded calendar so the engine never books them twice.
func loadSnapshot(ctx context.Context, database PlanStore, logger *zap.Logger, settings Settings, yearID string) (*planSnapshot, error) {
	year, span, err := findYear(ctx, database, yearID)
	if err != nil {
		return nil, err
	}

	logger.Debug("Loading plan snapshot",
		zap.String("year_id", year.ID),
		zap.String("start", year.Start),
		zap.String("end", year.End))

	excluded, err := loadCalendar(ctx, database, logger, settings, year.ID, span)
	if err != nil {
		return nil, err
	}

	families, err := database.GetFamilies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch families: %w", err)
	}

	availabilityRecords, err := database.GetAvailability(ctx, year.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability: %w", err)
	}

	assignments, err := database.GetAssignments(ctx, year.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	snap := &planSnapshot{
		year:         *year,
		span:         span,
		excluded:     excluded,
		families:     families,
		byID:         make(map[string]db.Family, len(families)),
		availability: make(map[model.FamilyID]model.DateSet, len(availabilityRecords)),
		assignments:  assignments,
	}
	for _, family := range families {
		snap.byID[family.ID] = family
	}

	for _, record := range availabilityRecords {
		dates, err := toDateSet(record.Dates)
		if err != nil {
			return nil, fmt.Errorf("failed to parse availability of family %s: %w", record.FamilyID, err)
		}
		snap.availability[model.FamilyID(record.FamilyID)] = dates
	}

	for _, assignment := range assignments {
		if !assignment.IsManual || snap.isActive(assignment.FamilyID) {
			continue
		}
		date, err := model.ParseDate(assignment.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse assignment %s: %w", assignment.ID, err)
		}
		if !excluded.IsExcluded(date) {
			excluded[date] = "Dienst von " + snap.familyName(assignment.FamilyID)
		}
	}

	logger.Debug("Plan snapshot loaded",
		zap.Int("families", len(families)),
		zap.Int("availability_records", len(availabilityRecords)),
		zap.Int("assignments", len(assignments)),
		zap.Int("excluded_days", len(excluded)))

	return snap, nil
}

// loadCalendar builds the excluded calendar from stored holidays and vacations plus configured closures
func loadCalendar(ctx context.Context, database db.CalendarStore, logger *zap.Logger, settings Settings, yearID string, span model.Year) (planner.ExcludedCalendar, error) {
	holidayRecords, err := database.GetHolidays(ctx, yearID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}

	vacationRecords, err := database.GetVacations(ctx, yearID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vacations: %w", err)
	}

	holidays := make([]model.Holiday, 0, len(holidayRecords))
	for _, record := range holidayRecords {
		date, err := model.ParseDate(record.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse holiday %s: %w", record.Name, err)
		}
		holidays = append(holidays, model.Holiday{Date: date, Name: record.Name})
	}

	vacations := make([]model.Vacation, 0, len(vacationRecords))
	for _, record := range vacationRecords {
		start, err := model.ParseDate(record.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse vacation %s: %w", record.Name, err)
		}
		end, err := model.ParseDate(record.End)
		if err != nil {
			return nil, fmt.Errorf("failed to parse vacation %s: %w", record.Name, err)
		}
		vacations = append(vacations, model.Vacation{Start: start, End: end, Name: record.Name})
	}

	if settings.Closures != nil {
		closures, err := settings.Closures(span)
		if err != nil {
			return nil, fmt.Errorf("failed to expand closures: %w", err)
		}
		logger.Debug("Expanded recurring closures", zap.Int("count", len(closures)))
		holidays = append(holidays, closures...)
	}

	return planner.BuildExcludedCalendar(span, holidays, vacations), nil
}

func (s *planSnapshot) isActive(familyID string) bool {
	family, ok := s.byID[familyID]
	return ok && family.Active
}

func (s *planSnapshot) familyName(familyID string) string {
	if family, ok := s.byID[familyID]; ok {
		return family.Name
	}
	return familyID
}

// activeFamilies returns the active families, plus any extra IDs that exist
func (s *planSnapshot) activeFamilies(extra ...string) []model.Family {
	include := make(map[string]bool, len(extra))
	for _, id := range extra {
		include[id] = true
	}

	families := make([]model.Family, 0, len(s.families))
	for _, family := range s.families {
		if family.Active || include[family.ID] {
			families = append(families, toModelFamily(family))
		}
	}
	return families
}

// availabilityOf restricts the availability map to the given families
func (s *planSnapshot) availabilityOf(families []model.Family) map[model.FamilyID]model.DateSet {
	availability := make(map[model.FamilyID]model.DateSet, len(families))
	for _, family := range families {
		if dates, ok := s.availability[family.ID]; ok {
			availability[family.ID] = dates
		}
	}
	return availability
}

// assignmentsOf converts the persisted assignments of the given families
func (s *planSnapshot) assignmentsOf(families []model.Family, manualOnly bool) ([]model.Assignment, error) {
	include := make(map[model.FamilyID]bool, len(families))
	for _, family := range families {
		include[family.ID] = true
	}

	assignments := make([]model.Assignment, 0, len(s.assignments))
	for _, record := range s.assignments {
		if !include[model.FamilyID(record.FamilyID)] || (manualOnly && !record.IsManual) {
			continue
		}
		assignment, err := toModelAssignment(record)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, nil
}

// assignmentOn returns the persisted assignment on a date, if any
func (s *planSnapshot) assignmentOn(date model.Date) (db.Assignment, bool) {
	key := date.String()
	for _, assignment := range s.assignments {
		if assignment.Date == key {
			return assignment, true
		}
	}
	return db.Assignment{}, false
}

// latestPriorLoads picks, per family, the most recent prior load that ended before the year started
func latestPriorLoads(loads []db.PriorLoad, span model.Year, families []model.Family) (map[model.FamilyID]model.PriorLoad, error) {
	include := make(map[model.FamilyID]bool, len(families))
	for _, family := range families {
		include[family.ID] = true
	}

	latest := make(map[model.FamilyID]model.PriorLoad)
	for _, load := range loads {
		familyID := model.FamilyID(load.FamilyID)
		if !include[familyID] {
			continue
		}
		lastDate, err := model.ParseDate(load.LastDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse prior load of family %s: %w", load.FamilyID, err)
		}
		if !lastDate.Before(span.Start) {
			continue
		}
		if current, ok := latest[familyID]; ok && !lastDate.After(current.LastDate) {
			continue
		}
		latest[familyID] = model.PriorLoad{LastDate: lastDate, Count: load.Count}
	}
	return latest, nil
}
