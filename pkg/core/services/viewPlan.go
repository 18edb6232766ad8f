package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
	"github.com/jakechorley/cooking-rota/pkg/core/planner"
)

// PlanRow is one booked day of the plan
type PlanRow struct {
	Date       model.Date `json:"date"`
	FamilyID   string     `json:"familyId"`
	FamilyName string     `json:"familyName"`
	IsManual   bool       `json:"isManual"`
}

// FamilyLoad summarises the duties of one family in the plan
type FamilyLoad struct {
	FamilyID    string `json:"familyId"`
	Name        string `json:"name"`
	ParentCount int    `json:"parentCount"`
	Active      bool   `json:"active"`
	Count       int    `json:"count"`
	Manual      int    `json:"manual"`
	// Quota is zero for inactive families
	Quota int `json:"quota"`
}

// PlanView is a read-only view of the persisted plan of a year
type PlanView struct {
	YearID        string            `json:"yearId"`
	Label         string            `json:"label"`
	Start         model.Date        `json:"start"`
	End           model.Date        `json:"end"`
	AvailableDays int               `json:"availableDays"`
	Intervals     planner.Intervals `json:"intervals"`
	Rows          []PlanRow         `json:"rows"`
	Families      []FamilyLoad      `json:"families"`

	// Unfilled lists available days nobody is booked on
	Unfilled []model.Date `json:"unfilled"`
}

// ViewPlan builds the plan of a year with family names, per-family counts and quotas
func ViewPlan(ctx context.Context, database PlanStore, logger *zap.Logger, settings Settings, yearID string) (*PlanView, error) {
	logger.Debug("Starting viewPlan", zap.String("year_id", yearID))

	snap, err := loadSnapshot(ctx, database, logger, settings, yearID)
	if err != nil {
		return nil, err
	}

	active := snap.activeFamilies()
	days := planner.AvailableDays(snap.span, snap.excluded)
	quotas := planner.CalculateQuotas(active, len(days))

	view := &PlanView{
		YearID:        snap.year.ID,
		Label:         snap.span.Label(),
		Start:         snap.span.Start,
		End:           snap.span.End,
		AvailableDays: len(days),
		Intervals:     planner.CalculateIntervals(active, len(days)),
		Rows:          make([]PlanRow, 0, len(snap.assignments)),
		Families:      make([]FamilyLoad, 0, len(snap.families)),
		Unfilled:      make([]model.Date, 0),
	}

	loads := make(map[string]*FamilyLoad, len(snap.families))
	for _, family := range snap.families {
		loads[family.ID] = &FamilyLoad{
			FamilyID:    family.ID,
			Name:        family.Name,
			ParentCount: family.ParentCount,
			Active:      family.Active,
			Quota:       quotas[model.FamilyID(family.ID)],
		}
	}

	booked := model.NewDateSet()
	for _, record := range snap.assignments {
		assignment, err := toModelAssignment(record)
		if err != nil {
			return nil, err
		}
		booked.Add(assignment.Date)

		view.Rows = append(view.Rows, PlanRow{
			Date:       assignment.Date,
			FamilyID:   record.FamilyID,
			FamilyName: snap.familyName(record.FamilyID),
			IsManual:   record.IsManual,
		})

		load, ok := loads[record.FamilyID]
		if !ok {
			return nil, fmt.Errorf("assignment %s references unknown family %s", record.ID, record.FamilyID)
		}
		load.Count++
		if record.IsManual {
			load.Manual++
		}
	}
	slices.SortFunc(view.Rows, func(a, b PlanRow) int { return a.Date.Compare(b.Date) })

	for _, family := range snap.families {
		load := loads[family.ID]
		if load.Active || load.Count > 0 {
			view.Families = append(view.Families, *load)
		}
	}
	slices.SortFunc(view.Families, func(a, b FamilyLoad) int { return strings.Compare(a.Name, b.Name) })

	for _, day := range days {
		if !booked.Contains(day) {
			view.Unfilled = append(view.Unfilled, day)
		}
	}

	logger.Debug("Plan view built",
		zap.Int("rows", len(view.Rows)),
		zap.Int("families", len(view.Families)),
		zap.Int("unfilled", len(view.Unfilled)))

	return view, nil
}
