package model

import (
	"slices"
)

// FamilyID identifies a family across years
type FamilyID string

// Fairness weights derived from household structure
const (
	WeightSingleParent = 1
	WeightCouple       = 2
)

// Family represents a household enrolled in the cooking rota
type Family struct {
	ID          FamilyID
	Name        string
	ParentCount int
}

// IsSingleParent reports whether the household has exactly one parent
func (f Family) IsSingleParent() bool {
	return f.ParentCount == 1
}

// Weight returns the fairness weight of the family (1 single parent, 2 couple)
func (f Family) Weight() int {
	if f.IsSingleParent() {
		return WeightSingleParent
	}
	return WeightCouple
}

// Year is a school year running from Start to End inclusive
type Year struct {
	Start Date
	End   Date
}

// Days returns every calendar day of the year in ascending order
func (y Year) Days() []Date {
	if y.End.Before(y.Start) {
		return nil
	}
	days := make([]Date, 0, DaysBetween(y.Start, y.End)+1)
	for d := y.Start; !d.After(y.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether d falls inside the year
func (y Year) Contains(d Date) bool {
	return !d.Before(y.Start) && !d.After(y.End)
}

// Label returns the "2025/26" style label of a school year
func (y Year) Label() string {
	return y.Start.Time().Format("2006") + "/" + y.End.Time().Format("06")
}

// Holiday is a single named public holiday
type Holiday struct {
	Date Date
	Name string
}

// Vacation is a named closure range, both ends inclusive
type Vacation struct {
	Start Date
	End   Date
	Name  string
}

// PriorLoad summarises a family's duties in the previous year
type PriorLoad struct {
	LastDate Date
	Count    int
}

// Assignment is one cooking duty of one family on one date
type Assignment struct {
	FamilyID FamilyID
	Date     Date
	IsManual bool
}

// DateSet is a set of calendar dates
type DateSet map[Date]struct{}

// NewDateSet builds a set from the given dates
func NewDateSet(dates ...Date) DateSet {
	set := make(DateSet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

func (s DateSet) Add(d Date) {
	s[d] = struct{}{}
}

// Contains is safe on a nil set
func (s DateSet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

func (s DateSet) Len() int {
	return len(s)
}

// Sorted returns the dates in ascending order
func (s DateSet) Sorted() []Date {
	dates := make([]Date, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, Date.Compare)
	return dates
}
