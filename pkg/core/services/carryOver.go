package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
	"github.com/jakechorley/cooking-rota/pkg/db"
)

// CarryOverStore defines the database operations needed to carry over prior loads
type CarryOverStore interface {
	db.YearStore
	db.FamilyStore
	db.PriorLoadStore
	GetAssignments(ctx context.Context, yearID string) ([]db.Assignment, error)
}

// CarryOverResult counts what happened per family
type CarryOverResult struct {
	Created int
	Updated int
	// Skipped families already had a prior load with the same or a later last date
	Skipped int
	// NoAssignments counts active families without any duty in the source year
	NoAssignments int
}

// CarryOverPriorLoad stores, per family, the last duty date and the duty count of
// a finished year so the next year's plan can start from them.
// A family's existing row for the same source year is only updated when the new last date is later.
func CarryOverPriorLoad(ctx context.Context, database CarryOverStore, logger *zap.Logger, sourceYearID string) (*CarryOverResult, error) {
	logger.Debug("Starting carryOverPriorLoad", zap.String("source_year_id", sourceYearID))

	year, _, err := findYear(ctx, database, sourceYearID)
	if err != nil {
		return nil, err
	}

	assignments, err := database.GetAssignments(ctx, year.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	summaries := make(map[string]model.PriorLoad)
	for _, record := range assignments {
		assignment, err := toModelAssignment(record)
		if err != nil {
			return nil, err
		}
		summary := summaries[record.FamilyID]
		summary.Count++
		if assignment.Date.After(summary.LastDate) {
			summary.LastDate = assignment.Date
		}
		summaries[record.FamilyID] = summary
	}

	existing, err := database.GetPriorLoads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prior loads: %w", err)
	}

	bySourceYear := make(map[string]db.PriorLoad)
	for _, load := range existing {
		if load.SourceYearID == year.ID {
			bySourceYear[load.FamilyID] = load
		}
	}

	families, err := database.GetFamilies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch families: %w", err)
	}

	result := &CarryOverResult{}
	for _, family := range families {
		summary, ok := summaries[family.ID]
		if !ok {
			if family.Active {
				result.NoAssignments++
			}
			continue
		}

		current, exists := bySourceYear[family.ID]
		if !exists {
			load := &db.PriorLoad{
				ID:           uuid.New().String(),
				FamilyID:     family.ID,
				SourceYearID: year.ID,
				LastDate:     summary.LastDate.String(),
				Count:        summary.Count,
			}
			if err := database.InsertPriorLoad(ctx, load); err != nil {
				return nil, fmt.Errorf("failed to insert prior load for family %s: %w", family.ID, err)
			}
			result.Created++
			continue
		}

		currentLast, err := model.ParseDate(current.LastDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse prior load of family %s: %w", family.ID, err)
		}
		if !summary.LastDate.After(currentLast) {
			result.Skipped++
			continue
		}

		current.LastDate = summary.LastDate.String()
		current.Count = summary.Count
		if err := database.UpdatePriorLoad(ctx, &current); err != nil {
			return nil, fmt.Errorf("failed to update prior load for family %s: %w", family.ID, err)
		}
		result.Updated++
	}

	logger.Info("Prior load carried over",
		zap.String("source_year_id", year.ID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("no_assignments", result.NoAssignments))

	return result, nil
}
