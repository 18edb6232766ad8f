package services

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// PublishedPlanRow is one line of the published plan
type PublishedPlanRow struct {
	Date   string // Format: "Mo 06.10.2025"
	Family string
	Manual bool
}

// PublishedPlan is the plan of a year shaped for a spreadsheet tab
type PublishedPlan struct {
	Title string
	Rows  []PublishedPlanRow
	// Summary holds one "name: count/quota" entry per family
	Summary []string
}

var germanWeekdays = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

// PublishPlan builds the data structure for publishing a plan to Google Sheets
func PublishPlan(ctx context.Context, database PlanStore, logger *zap.Logger, settings Settings, yearID string) (*PublishedPlan, error) {
	logger.Debug("Starting publishPlan", zap.String("year_id", yearID))

	view, err := ViewPlan(ctx, database, logger, settings, yearID)
	if err != nil {
		return nil, err
	}

	published := &PublishedPlan{
		Title:   "Kochplan " + view.Label,
		Rows:    make([]PublishedPlanRow, 0, len(view.Rows)),
		Summary: make([]string, 0, len(view.Families)),
	}

	for _, row := range view.Rows {
		published.Rows = append(published.Rows, PublishedPlanRow{
			Date:   germanWeekdays[row.Date.Weekday()] + " " + row.Date.German(),
			Family: row.FamilyName,
			Manual: row.IsManual,
		})
	}

	for _, family := range view.Families {
		published.Summary = append(published.Summary, formatLoad(family))
	}

	logger.Debug("Plan prepared for publishing",
		zap.String("title", published.Title),
		zap.Int("rows", len(published.Rows)))

	return published, nil
}

func formatLoad(family FamilyLoad) string {
	if !family.Active {
		return family.Name + ": " + strconv.Itoa(family.Count) + " (ausgetreten)"
	}
	return family.Name + ": " + strconv.Itoa(family.Count) + "/" + strconv.Itoa(family.Quota)
}
