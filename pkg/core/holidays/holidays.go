// Package holidays computes the statutory public holidays of Baden-Württemberg.
package holidays

import (
	"slices"
	"time"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

var fixedHolidays = []fixedHoliday{
	{time.January, 1, "Neujahr"},
	{time.January, 6, "Heilige Drei Könige"},
	{time.May, 1, "Tag der Arbeit"},
	{time.October, 3, "Tag der Deutschen Einheit"},
	{time.November, 1, "Allerheiligen"},
	{time.December, 25, "1. Weihnachtstag"},
	{time.December, 26, "2. Weihnachtstag"},
}

// Offsets in days from Easter Sunday
var easterHolidays = []struct {
	offset int
	name   string
}{
	{-2, "Karfreitag"},
	{1, "Ostermontag"},
	{39, "Christi Himmelfahrt"},
	{50, "Pfingstmontag"},
	{60, "Fronleichnam"},
}

// Easter returns Easter Sunday of the given year (anonymous Gregorian algorithm)
func Easter(year int) model.Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return model.NewDate(year, time.Month(month), day)
}

// ForCalendarYear returns the holidays of one calendar year sorted by date
func ForCalendarYear(year int) []model.Holiday {
	holidays := make([]model.Holiday, 0, len(fixedHolidays)+len(easterHolidays))

	for _, fixed := range fixedHolidays {
		holidays = append(holidays, model.Holiday{
			Date: model.NewDate(year, fixed.month, fixed.day),
			Name: fixed.name,
		})
	}

	easter := Easter(year)
	for _, moving := range easterHolidays {
		holidays = append(holidays, model.Holiday{
			Date: easter.AddDays(moving.offset),
			Name: moving.name,
		})
	}

	sortByDate(holidays)
	return holidays
}

// ForSchoolYear returns the holidays from September of startYear to August of the following year
func ForSchoolYear(startYear int) []model.Holiday {
	var holidays []model.Holiday

	for _, holiday := range ForCalendarYear(startYear) {
		if holiday.Date.Month >= time.September {
			holidays = append(holidays, holiday)
		}
	}
	for _, holiday := range ForCalendarYear(startYear + 1) {
		if holiday.Date.Month <= time.August {
			holidays = append(holidays, holiday)
		}
	}

	sortByDate(holidays)
	return holidays
}

// ForYear returns the holidays that fall inside an arbitrary year range
func ForYear(year model.Year) []model.Holiday {
	var holidays []model.Holiday
	for calendarYear := year.Start.Year; calendarYear <= year.End.Year; calendarYear++ {
		for _, holiday := range ForCalendarYear(calendarYear) {
			if year.Contains(holiday.Date) {
				holidays = append(holidays, holiday)
			}
		}
	}
	return holidays
}

func sortByDate(holidays []model.Holiday) {
	slices.SortFunc(holidays, func(a, b model.Holiday) int {
		return a.Date.Compare(b.Date)
	})
}
