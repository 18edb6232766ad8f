package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/planner"
	"github.com/jakechorley/cooking-rota/pkg/db"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

// AddFamilyToPlan activates a family joining mid-year and hands it future
// generated duties of the most loaded families
func AddFamilyToPlan(
	ctx context.Context,
	database db.Database,
	locker lock.Locker,
	logger *zap.Logger,
	settings Settings,
	yearID string,
	familyID string,
) (*planner.AddFamilyResult, error) {
	logger.Debug("Starting addFamilyToPlan", zap.String("year_id", yearID), zap.String("family_id", familyID))

	var result *planner.AddFamilyResult
	err := withYearLock(ctx, locker, logger, yearID, func() error {
		snap, err := loadSnapshot(ctx, database, logger, settings, yearID)
		if err != nil {
			return err
		}

		family, ok := snap.byID[familyID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrFamilyNotFound, familyID)
		}

		families := snap.activeFamilies(familyID)
		assignments, err := snap.assignmentsOf(families, false)
		if err != nil {
			return err
		}

		newcomer := toModelFamily(family)
		result, err = planner.AddFamily(planner.AddFamilyInput{
			Year:            snap.span,
			Excluded:        snap.excluded,
			Families:        families,
			Assignments:     assignments,
			NewFamily:       newcomer.ID,
			NewAvailability: snap.availability[newcomer.ID],
			Today:           settings.today(),
		})
		if err != nil {
			return fmt.Errorf("failed to rebalance plan: %w", err)
		}

		logger.Debug("Rebalance computed",
			zap.Int("target", result.Target),
			zap.Int("transferred", result.Transferred))

		changes, err := transferChanges(snap, result.Transfers)
		if err != nil {
			return err
		}
		if !family.Active {
			logger.Debug("Activating family", zap.String("family_id", familyID))
			changes.ActivateFamilyID = familyID
		}
		if changes.IsEmpty() {
			return nil
		}
		if err := database.ApplyPlanChanges(ctx, changes); err != nil {
			return fmt.Errorf("failed to apply transfers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Family added to plan",
		zap.String("year_id", yearID),
		zap.String("family_id", familyID),
		zap.Int("target", result.Target),
		zap.Int("transferred", result.Transferred),
		zap.Int("conflicts", len(result.Conflicts)))

	return result, nil
}

// transferChanges maps engine reassignments onto the persisted assignment IDs
func transferChanges(snap *planSnapshot, reassignments []planner.Reassignment) (db.PlanChanges, error) {
	changes := db.PlanChanges{}
	for _, r := range reassignments {
		existing, ok := snap.assignmentOn(r.Date)
		if !ok || existing.FamilyID != string(r.From) {
			return db.PlanChanges{}, fmt.Errorf("no assignment of family %s on %s", r.From, r.Date)
		}
		changes.Reassignments = append(changes.Reassignments, db.Reassignment{
			AssignmentID: existing.ID,
			FamilyID:     string(r.To),
		})
	}
	return changes, nil
}
