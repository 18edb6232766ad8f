package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/planner"
	"github.com/jakechorley/cooking-rota/pkg/db"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

// GeneratePlanResult is the outcome of a plan generation
type GeneratePlanResult struct {
	Year db.Year
	Plan *planner.PlanResult

	// Assignments are the generated records (persisted unless DryRun)
	Assignments []db.Assignment

	ManualCount int
	DryRun      bool
}

// HardConflicts returns the conflicts describing unfilled days
func (r *GeneratePlanResult) HardConflicts() []string {
	hard := make([]string, 0)
	for _, conflict := range r.Plan.Conflicts {
		if planner.IsHardConflict(conflict) {
			hard = append(hard, conflict)
		}
	}
	return hard
}

// GeneratePlan regenerates every non-manual assignment of a year.
// Manual assignments of active families are kept and fed to the engine.
// With dryRun nothing is written.
func GeneratePlan(
	ctx context.Context,
	database db.Database,
	locker lock.Locker,
	logger *zap.Logger,
	settings Settings,
	yearID string,
	dryRun bool,
) (*GeneratePlanResult, error) {
	logger.Debug("Starting generatePlan", zap.String("year_id", yearID), zap.Bool("dry_run", dryRun))

	var result *GeneratePlanResult
	err := withYearLock(ctx, locker, logger, yearID, func() error {
		var err error
		result, err = generatePlan(ctx, database, logger, settings, yearID, dryRun)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func generatePlan(ctx context.Context, database db.Database, logger *zap.Logger, settings Settings, yearID string, dryRun bool) (*GeneratePlanResult, error) {
	snap, err := loadSnapshot(ctx, database, logger, settings, yearID)
	if err != nil {
		return nil, err
	}

	families := snap.activeFamilies()

	manual, err := snap.assignmentsOf(families, true)
	if err != nil {
		return nil, err
	}

	logger.Debug("Fetching prior loads")
	loads, err := database.GetPriorLoads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prior loads: %w", err)
	}

	priorLoads, err := latestPriorLoads(loads, snap.span, families)
	if err != nil {
		return nil, err
	}

	logger.Debug("Running assignment engine",
		zap.Int("families", len(families)),
		zap.Int("manual_assignments", len(manual)),
		zap.Int("prior_loads", len(priorLoads)))

	plan, err := planner.Generate(planner.PlanInput{
		Year:              snap.span,
		Families:          families,
		Availability:      snap.availabilityOf(families),
		Excluded:          snap.excluded,
		PriorLoads:        priorLoads,
		ManualAssignments: manual,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	records := make([]db.Assignment, 0, len(plan.Assignments))
	for _, assignment := range plan.Assignments {
		records = append(records, db.Assignment{
			ID:       uuid.New().String(),
			YearID:   snap.year.ID,
			FamilyID: string(assignment.FamilyID),
			Date:     assignment.Date.String(),
			IsManual: false,
		})
	}

	result := &GeneratePlanResult{
		Year:        snap.year,
		Plan:        plan,
		Assignments: records,
		ManualCount: len(manual),
		DryRun:      dryRun,
	}

	if dryRun {
		logger.Info("Dry run, plan not saved",
			zap.String("year_id", snap.year.ID),
			zap.Int("assignments", len(records)),
			zap.Int("conflicts", len(plan.Conflicts)))
		return result, nil
	}

	logger.Debug("Replacing generated assignments", zap.Int("count", len(records)))
	if err := database.ReplaceGeneratedAssignments(ctx, snap.year.ID, records); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	logger.Info("Plan generated",
		zap.String("year_id", snap.year.ID),
		zap.Int("available_days", plan.AvailableDays),
		zap.Int("assignments", len(records)),
		zap.Int("manual_assignments", len(manual)),
		zap.Int("conflicts", len(plan.Conflicts)))

	return result, nil
}
