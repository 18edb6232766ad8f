package config

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
)

// ExpandClosures returns one named holiday per occurrence of each closure inside the year.
// Rules without their own DTSTART are anchored at the start of the year.
func ExpandClosures(closures []Closure, year model.Year) ([]model.Holiday, error) {
	holidays := make([]model.Holiday, 0)

	for i, closure := range closures {
		rule, err := rrule.StrToRRule(closure.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for closure %d: %w", i, err)
		}

		if !strings.Contains(strings.ToUpper(closure.RRule), "DTSTART") {
			rule.DTStart(year.Start.Time())
		}

		for _, occurrence := range rule.Between(year.Start.Time(), year.End.Time(), true) {
			holidays = append(holidays, model.Holiday{
				Date: model.DateOf(occurrence.UTC()),
				Name: closure.Name,
			})
		}
	}

	return holidays, nil
}

// ClosureSource expands the configured closures for any year
func (c *Config) ClosureSource() func(model.Year) ([]model.Holiday, error) {
	closures := c.Closures
	return func(year model.Year) ([]model.Holiday, error) {
		return ExpandClosures(closures, year)
	}
}
