package db

// Dates are stored as canonical "2006-01-02" strings on every record

// Year represents a school year record
type Year struct {
	ID     string
	Start  string
	End    string
	Active bool
}

// Holiday represents a named closure day of a year
type Holiday struct {
	ID     string
	YearID string
	Date   string
	Name   string
}

// Vacation represents a named closure range of a year (both ends inclusive)
type Vacation struct {
	ID     string
	YearID string
	Start  string
	End    string
	Name   string
}

// Family represents an enrolled household
type Family struct {
	ID          string
	Name        string
	Email       string
	ParentCount int
	Active      bool
}

// Availability represents the dates one family can cook in one year
type Availability struct {
	ID       string
	YearID   string
	FamilyID string
	Dates    []string
}

// Assignment represents one cooking duty
type Assignment struct {
	ID       string
	YearID   string
	FamilyID string
	Date     string
	IsManual bool
}

// PriorLoad represents the load a family carried in a finished year
type PriorLoad struct {
	ID       string
	FamilyID string
	// SourceYearID is the year the load was taken from
	SourceYearID string
	LastDate     string
	Count        int
}

// Reassignment moves an existing assignment to another family
type Reassignment struct {
	AssignmentID string
	FamilyID     string
}

// PlanChanges is a set of assignment edits applied atomically
type PlanChanges struct {
	Reassignments []Reassignment
	// DeletedAssignmentIDs are removed outright, before any insert
	DeletedAssignmentIDs []string
	Inserted             []Assignment
	// ActivateFamilyID and DeactivateFamilyID, when set, flip the family flag in the same transaction
	ActivateFamilyID   string
	DeactivateFamilyID string
}

// IsEmpty reports whether applying the changes would be a no-op
func (c PlanChanges) IsEmpty() bool {
	return len(c.Reassignments) == 0 &&
		len(c.DeletedAssignmentIDs) == 0 &&
		len(c.Inserted) == 0 &&
		c.ActivateFamilyID == "" &&
		c.DeactivateFamilyID == ""
}
