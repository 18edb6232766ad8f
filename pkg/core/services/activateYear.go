package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/db"
)

// ActivateYearResult describes a switch of the active year
type ActivateYearResult struct {
	Year db.Year
	// Previous is nil when no year was active
	Previous  *db.Year
	CarryOver *CarryOverResult
}

// ActivateYear makes a year the active one, carrying over the prior load of the
// previously active year first
func ActivateYear(ctx context.Context, database CarryOverStore, logger *zap.Logger, yearID string) (*ActivateYearResult, error) {
	logger.Debug("Starting activateYear", zap.String("year_id", yearID))

	year, _, err := findYear(ctx, database, yearID)
	if err != nil {
		return nil, err
	}

	years, err := database.GetYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch years: %w", err)
	}

	result := &ActivateYearResult{Year: *year}
	for i := range years {
		if years[i].Active && years[i].ID != year.ID {
			result.Previous = &years[i]
			break
		}
	}

	if result.Previous != nil {
		logger.Debug("Carrying over previous year", zap.String("previous_year_id", result.Previous.ID))
		result.CarryOver, err = CarryOverPriorLoad(ctx, database, logger, result.Previous.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := database.SetActiveYear(ctx, year.ID); err != nil {
		return nil, fmt.Errorf("failed to activate year: %w", err)
	}
	result.Year.Active = true

	logger.Info("Year activated", zap.String("year_id", year.ID), zap.String("start", year.Start))
	return result, nil
}
