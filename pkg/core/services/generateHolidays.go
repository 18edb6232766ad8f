package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/holidays"
	"github.com/jakechorley/cooking-rota/pkg/db"
)

// HolidayStore defines the database operations needed to generate holidays
type HolidayStore interface {
	db.YearStore
	db.CalendarStore
}

// GenerateHolidaysResult reports what happened to the holidays of a year
type GenerateHolidaysResult struct {
	Inserted []db.Holiday
	// Skipped is set when holidays already existed and force was not given
	Skipped  bool
	Existing int
}

// GenerateHolidays stores the public holidays falling into a year.
// Existing holidays are kept unless force is set, in which case they are replaced.
func GenerateHolidays(ctx context.Context, database HolidayStore, logger *zap.Logger, yearID string, force bool) (*GenerateHolidaysResult, error) {
	logger.Debug("Starting generateHolidays", zap.String("year_id", yearID), zap.Bool("force", force))

	year, span, err := findYear(ctx, database, yearID)
	if err != nil {
		return nil, err
	}

	existing, err := database.GetHolidays(ctx, year.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}

	if len(existing) > 0 && !force {
		logger.Info("Holidays already exist, skipping",
			zap.String("year_id", year.ID),
			zap.Int("existing", len(existing)))
		return &GenerateHolidaysResult{Skipped: true, Existing: len(existing)}, nil
	}

	if len(existing) > 0 {
		logger.Debug("Deleting existing holidays", zap.Int("count", len(existing)))
		if err := database.DeleteHolidays(ctx, year.ID); err != nil {
			return nil, fmt.Errorf("failed to delete holidays: %w", err)
		}
	}

	generated := holidays.ForYear(span)
	records := make([]db.Holiday, 0, len(generated))
	for _, holiday := range generated {
		records = append(records, db.Holiday{
			ID:     uuid.New().String(),
			YearID: year.ID,
			Date:   holiday.Date.String(),
			Name:   holiday.Name,
		})
	}

	if err := database.InsertHolidays(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to insert holidays: %w", err)
	}

	logger.Info("Holidays generated",
		zap.String("year_id", year.ID),
		zap.Int("inserted", len(records)),
		zap.Int("replaced", len(existing)))

	return &GenerateHolidaysResult{Inserted: records, Existing: len(existing)}, nil
}
