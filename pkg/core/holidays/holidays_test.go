package holidays

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

func TestEaster(t *testing.T) {
	tests := map[int]string{
		2019: "2019-04-21",
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
		2038: "2038-04-25",
		2285: "2285-03-22",
	}

	for year, expected := range tests {
		assert.Equal(t, expected, Easter(year).String(), "year %d", year)
	}
}

func TestForCalendarYear(t *testing.T) {
	holidays := ForCalendarYear(2025)
	require.Len(t, holidays, 12)

	byName := make(map[string]string, len(holidays))
	for _, holiday := range holidays {
		byName[holiday.Name] = holiday.Date.String()
	}

	assert.Equal(t, "2025-01-01", byName["Neujahr"])
	assert.Equal(t, "2025-04-18", byName["Karfreitag"])
	assert.Equal(t, "2025-04-21", byName["Ostermontag"])
	assert.Equal(t, "2025-05-29", byName["Christi Himmelfahrt"])
	assert.Equal(t, "2025-06-09", byName["Pfingstmontag"])
	assert.Equal(t, "2025-06-19", byName["Fronleichnam"])
	assert.Equal(t, "2025-12-26", byName["2. Weihnachtstag"])

	for i := 1; i < len(holidays); i++ {
		assert.True(t, holidays[i-1].Date.Before(holidays[i].Date), "holidays not sorted at %d", i)
	}
}

func TestForSchoolYear(t *testing.T) {
	holidays := ForSchoolYear(2025)

	year := model.Year{Start: model.MustParseDate("2025-09-01"), End: model.MustParseDate("2026-08-31")}
	for _, holiday := range holidays {
		assert.True(t, year.Contains(holiday.Date), "%s (%s) outside the school year", holiday.Name, holiday.Date)
	}

	// Sep-Dec 2025: 3.10, 1.11, 25.12, 26.12; Jan-Aug 2026: 1.1, 6.1, 1.5 and the five Easter holidays
	require.Len(t, holidays, 12)
	assert.Equal(t, model.Holiday{Date: model.MustParseDate("2025-10-03"), Name: "Tag der Deutschen Einheit"}, holidays[0])
	assert.Equal(t, model.Holiday{Date: model.MustParseDate("2026-06-04"), Name: "Fronleichnam"}, holidays[len(holidays)-1])
}

func TestForYear(t *testing.T) {
	year := model.Year{Start: model.MustParseDate("2025-12-01"), End: model.MustParseDate("2026-01-31")}

	holidays := ForYear(year)

	names := make([]string, 0, len(holidays))
	for _, holiday := range holidays {
		names = append(names, holiday.Name)
	}
	assert.Equal(t, []string{"1. Weihnachtstag", "2. Weihnachtstag", "Neujahr", "Heilige Drei Könige"}, names)
}
