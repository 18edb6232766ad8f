package sheetsclient

import (
	"context"
	"fmt"
)

const (
	columnDate   = "Datum"
	columnFamily = "Familie"
	columnKind   = "Art"

	kindManual    = "manuell"
	kindGenerated = ""

	headerRow = 2 // zero-based; rows 0 and 1 hold the title and a gap
)

// PlanSheetRow is one cooking day in the published tab
type PlanSheetRow struct {
	Date   string
	Family string
	Manual bool
}

// PlanSheet is the content of one published tab
type PlanSheet struct {
	Title   string
	Rows    []PlanSheetRow
	Summary []string
}

// PublishPlan writes the plan into the tab named after its title, creating the tab if needed.
// Columns the parents added to an existing tab (e.g. "Gericht") are carried over per date.
func (c *Client) PublishPlan(ctx context.Context, spreadsheetID string, plan *PlanSheet) error {
	exists, err := c.hasSheet(ctx, spreadsheetID, plan.Title)
	if err != nil {
		return err
	}

	var existing [][]interface{}
	if exists {
		existing, err = c.GetValues(ctx, spreadsheetID, fmt.Sprintf("'%s'!A1:ZZ", plan.Title))
		if err != nil {
			return fmt.Errorf("failed to read existing tab data: %w", err)
		}
	} else if _, err := c.CreateSheet(ctx, spreadsheetID, plan.Title); err != nil {
		return fmt.Errorf("failed to create tab: %w", err)
	}

	values := buildPlanValues(plan, existing)
	if err := c.writeValues(ctx, spreadsheetID, fmt.Sprintf("'%s'!A1:ZZ", plan.Title), values); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}

	return nil
}

// buildPlanValues lays out title, header, one row per day and the summary block.
// Extra columns found in existing are kept for dates that are still in the plan.
func buildPlanValues(plan *PlanSheet, existing [][]interface{}) [][]interface{} {
	extraHeaders, extraByDate := existingExtras(existing)

	header := []interface{}{columnDate, columnFamily, columnKind}
	for _, name := range extraHeaders {
		header = append(header, name)
	}

	values := [][]interface{}{
		{plan.Title},
		{},
		header,
	}

	for _, row := range plan.Rows {
		kind := kindGenerated
		if row.Manual {
			kind = kindManual
		}
		sheetRow := []interface{}{row.Date, row.Family, kind}

		extras := extraByDate[row.Date]
		for i := range extraHeaders {
			if i < len(extras) {
				sheetRow = append(sheetRow, extras[i])
			} else {
				sheetRow = append(sheetRow, "")
			}
		}
		values = append(values, sheetRow)
	}

	if len(plan.Summary) > 0 {
		values = append(values, []interface{}{}, []interface{}{"Dienste je Familie"})
		for _, line := range plan.Summary {
			values = append(values, []interface{}{line})
		}
	}

	return values
}

// existingExtras returns the headers right of the managed columns and their values keyed by date
func existingExtras(existing [][]interface{}) ([]string, map[string][]interface{}) {
	byDate := make(map[string][]interface{})
	if len(existing) <= headerRow {
		return nil, byDate
	}

	header := existing[headerRow]
	dateCol := findColumnIndex(header, columnDate)
	if dateCol == -1 {
		return nil, byDate
	}

	managed := map[string]bool{columnDate: true, columnFamily: true, columnKind: true}
	var extraCols []int
	var extraHeaders []string
	for i, cell := range header {
		name, ok := cell.(string)
		if !ok || name == "" || managed[name] {
			continue
		}
		extraCols = append(extraCols, i)
		extraHeaders = append(extraHeaders, name)
	}
	if len(extraCols) == 0 {
		return nil, byDate
	}

	for _, row := range existing[headerRow+1:] {
		if dateCol >= len(row) {
			continue
		}
		date, ok := row[dateCol].(string)
		if !ok || date == "" {
			continue
		}
		extras := make([]interface{}, len(extraCols))
		for i, col := range extraCols {
			if col < len(row) {
				extras[i] = row[col]
			} else {
				extras[i] = ""
			}
		}
		byDate[date] = extras
	}

	return extraHeaders, byDate
}

// findColumnIndex finds the index of a column by its header name
func findColumnIndex(header []interface{}, columnName string) int {
	for i, cell := range header {
		if str, ok := cell.(string); ok && str == columnName {
			return i
		}
	}
	return -1
}
