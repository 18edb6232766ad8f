package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
	"github.com/jakechorley/cooking-rota/pkg/db"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

// AssignResult is the outcome of a manual assignment
type AssignResult struct {
	Assignment db.Assignment
	// Replaced is the generated assignment that previously held the date
	Replaced *db.Assignment
}

// AssignManually books a family on a date by hand.
// A generated assignment on that date is replaced; a manual one is never overwritten.
func AssignManually(
	ctx context.Context,
	database PlanStore,
	locker lock.Locker,
	logger *zap.Logger,
	settings Settings,
	yearID string,
	familyID string,
	dateStr string,
) (*AssignResult, error) {
	logger.Debug("Starting assignManually",
		zap.String("year_id", yearID),
		zap.String("family_id", familyID),
		zap.String("date", dateStr))

	date, err := model.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}

	var result *AssignResult
	err = withYearLock(ctx, locker, logger, yearID, func() error {
		snap, err := loadSnapshot(ctx, database, logger, settings, yearID)
		if err != nil {
			return err
		}

		if !snap.isActive(familyID) {
			return fmt.Errorf("%w: %s is unknown or inactive", ErrFamilyNotFound, familyID)
		}

		existing, booked := snap.assignmentOn(date)
		if booked && existing.IsManual {
			return fmt.Errorf("%w: %s is held by %s", ErrManualConflict, date.German(), snap.familyName(existing.FamilyID))
		}

		if !snap.span.Contains(date) {
			return fmt.Errorf("%w: %s is outside the year", ErrDateExcluded, date.German())
		}
		if reason, excluded := snap.excluded[date]; excluded {
			return fmt.Errorf("%w: %s (%s)", ErrDateExcluded, date.German(), reason)
		}

		result = &AssignResult{
			Assignment: db.Assignment{
				ID:       uuid.New().String(),
				YearID:   snap.year.ID,
				FamilyID: familyID,
				Date:     date.String(),
				IsManual: true,
			},
		}
		changes := db.PlanChanges{Inserted: []db.Assignment{result.Assignment}}
		if booked {
			logger.Debug("Replacing generated assignment",
				zap.String("assignment_id", existing.ID),
				zap.String("family_id", existing.FamilyID))
			changes.DeletedAssignmentIDs = []string{existing.ID}
			result.Replaced = &existing
		}

		if err := database.ApplyPlanChanges(ctx, changes); err != nil {
			return fmt.Errorf("failed to save assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Manual assignment saved",
		zap.String("year_id", yearID),
		zap.String("family_id", familyID),
		zap.String("date", date.String()),
		zap.Bool("replaced_generated", result.Replaced != nil))

	return result, nil
}
