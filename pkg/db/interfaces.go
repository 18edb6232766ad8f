package db

import "context"

// YearStore defines the interface for school year operations
type YearStore interface {
	GetYears(ctx context.Context) ([]Year, error)
	InsertYear(ctx context.Context, year *Year) error
	// SetActiveYear marks exactly one year as active
	SetActiveYear(ctx context.Context, yearID string) error
}

// CalendarStore defines the interface for holiday and vacation operations
type CalendarStore interface {
	GetHolidays(ctx context.Context, yearID string) ([]Holiday, error)
	InsertHolidays(ctx context.Context, holidays []Holiday) error
	DeleteHolidays(ctx context.Context, yearID string) error
	GetVacations(ctx context.Context, yearID string) ([]Vacation, error)
	InsertVacation(ctx context.Context, vacation *Vacation) error
}

// FamilyStore defines the interface for family operations
type FamilyStore interface {
	GetFamilies(ctx context.Context) ([]Family, error)
	InsertFamily(ctx context.Context, family *Family) error
}

// AvailabilityStore defines the interface for availability operations
type AvailabilityStore interface {
	GetAvailability(ctx context.Context, yearID string) ([]Availability, error)
	// UpsertAvailability replaces the dates of a family in a year
	UpsertAvailability(ctx context.Context, availability *Availability) error
}

// AssignmentStore defines the interface for assignment operations
type AssignmentStore interface {
	GetAssignments(ctx context.Context, yearID string) ([]Assignment, error)
	InsertAssignment(ctx context.Context, assignment *Assignment) error
	// ReplaceGeneratedAssignments deletes the non-manual assignments of a year and inserts the given ones
	ReplaceGeneratedAssignments(ctx context.Context, yearID string, assignments []Assignment) error
	DeleteAssignments(ctx context.Context, yearID string) (int, error)
	// ApplyPlanChanges runs all edits in one transaction; nothing is kept when one fails
	ApplyPlanChanges(ctx context.Context, changes PlanChanges) error
}

// PriorLoadStore defines the interface for carried-over load operations
type PriorLoadStore interface {
	GetPriorLoads(ctx context.Context) ([]PriorLoad, error)
	InsertPriorLoad(ctx context.Context, load *PriorLoad) error
	UpdatePriorLoad(ctx context.Context, load *PriorLoad) error
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	YearStore
	CalendarStore
	FamilyStore
	AvailabilityStore
	AssignmentStore
	PriorLoadStore
}
