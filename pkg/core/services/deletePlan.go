package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/db"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

// DeletePlanStore defines the database operations needed to delete a plan
type DeletePlanStore interface {
	db.YearStore
	DeleteAssignments(ctx context.Context, yearID string) (int, error)
}

// DeletePlan removes every assignment of a year, manual ones included.
// It returns the number of deleted assignments.
func DeletePlan(ctx context.Context, database DeletePlanStore, locker lock.Locker, logger *zap.Logger, yearID string) (int, error) {
	logger.Debug("Starting deletePlan", zap.String("year_id", yearID))

	if _, _, err := findYear(ctx, database, yearID); err != nil {
		return 0, err
	}

	var deleted int
	err := withYearLock(ctx, locker, logger, yearID, func() error {
		var err error
		deleted, err = database.DeleteAssignments(ctx, yearID)
		if err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Plan deleted", zap.String("year_id", yearID), zap.Int("deleted", deleted))
	return deleted, nil
}
