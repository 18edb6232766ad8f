package planner

import (
	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

// ReasonWeekend is the exclusion reason recorded for Saturdays and Sundays
const ReasonWeekend = "Wochenende"

// ExcludedCalendar maps every date on which no duty can take place to its reason
type ExcludedCalendar map[model.Date]string

// IsExcluded is safe on a nil calendar
func (c ExcludedCalendar) IsExcluded(d model.Date) bool {
	_, ok := c[d]
	return ok
}

// BuildExcludedCalendar marks weekends, vacation ranges and holidays of a year.
//
// Later writes win: a vacation overrides a weekend and a holiday overrides both,
// so every date carries its most specific reason.
// Vacation and holiday dates outside the year are kept; they never affect the walk.
func BuildExcludedCalendar(year model.Year, holidays []model.Holiday, vacations []model.Vacation) ExcludedCalendar {
	calendar := make(ExcludedCalendar)

	for _, d := range year.Days() {
		if d.IsWeekend() {
			calendar[d] = ReasonWeekend
		}
	}

	for _, vacation := range vacations {
		for d := vacation.Start; !d.After(vacation.End); d = d.AddDays(1) {
			calendar[d] = vacation.Name
		}
	}

	for _, holiday := range holidays {
		calendar[holiday.Date] = holiday.Name
	}

	return calendar
}

// AvailableDays returns the non-excluded days of the year in ascending order
func AvailableDays(year model.Year, excluded ExcludedCalendar) []model.Date {
	days := make([]model.Date, 0)
	for _, d := range year.Days() {
		if !excluded.IsExcluded(d) {
			days = append(days, d)
		}
	}
	return days
}

// CountAvailableDays returns the number of non-excluded days of the year
func CountAvailableDays(year model.Year, excluded ExcludedCalendar) int {
	return len(AvailableDays(year, excluded))
}
