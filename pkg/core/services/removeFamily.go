package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/planner"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

// RemoveFamilyFromPlan redistributes the future duties of a leaving family and
// marks it inactive, all in one transaction. Past duties stay as history.
func RemoveFamilyFromPlan(
	ctx context.Context,
	database PlanStore,
	locker lock.Locker,
	logger *zap.Logger,
	settings Settings,
	yearID string,
	familyID string,
) (*planner.RemoveFamilyResult, error) {
	logger.Debug("Starting removeFamilyFromPlan", zap.String("year_id", yearID), zap.String("family_id", familyID))

	var result *planner.RemoveFamilyResult
	err := withYearLock(ctx, locker, logger, yearID, func() error {
		snap, err := loadSnapshot(ctx, database, logger, settings, yearID)
		if err != nil {
			return err
		}

		if _, ok := snap.byID[familyID]; !ok {
			return fmt.Errorf("%w: %s", ErrFamilyNotFound, familyID)
		}

		families := snap.activeFamilies(familyID)
		assignments, err := snap.assignmentsOf(families, false)
		if err != nil {
			return err
		}

		result, err = planner.RemoveFamily(planner.RemoveFamilyInput{
			Year:         snap.span,
			Excluded:     snap.excluded,
			Families:     families,
			Availability: snap.availabilityOf(families),
			Assignments:  assignments,
			Removed:      toModelFamily(snap.byID[familyID]).ID,
			Today:        settings.today(),
		})
		if err != nil {
			return fmt.Errorf("failed to rebalance plan: %w", err)
		}

		changes, err := transferChanges(snap, result.Reassignments)
		if err != nil {
			return err
		}
		for _, date := range result.Deletions {
			existing, ok := snap.assignmentOn(date)
			if !ok {
				return fmt.Errorf("no assignment on %s", date)
			}
			changes.DeletedAssignmentIDs = append(changes.DeletedAssignmentIDs, existing.ID)
		}
		changes.DeactivateFamilyID = familyID

		logger.Debug("Applying plan changes",
			zap.Int("reassignments", len(changes.Reassignments)),
			zap.Int("deletions", len(changes.DeletedAssignmentIDs)))

		if err := database.ApplyPlanChanges(ctx, changes); err != nil {
			return fmt.Errorf("failed to apply plan changes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Family removed from plan",
		zap.String("year_id", yearID),
		zap.String("family_id", familyID),
		zap.Int("redistributed", result.Redistributed),
		zap.Int("removed", result.Removed),
		zap.Int("conflicts", len(result.Conflicts)))

	return result, nil
}
