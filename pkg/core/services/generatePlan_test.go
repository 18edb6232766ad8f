package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/internal/testutil"
	"github.com/jakechorley/cooking-rota/pkg/core/model"
	"github.com/jakechorley/cooking-rota/pkg/db"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

func newYearWithCouples(t *testing.T, n int) *testutil.Store {
	store := newStore("2090-09-01", "2091-08-31")
	for _, id := range []string{"c01", "c02", "c03", "c04", "c05"}[:n] {
		addFamily(store, id, 2, true)
		availableOnWeekdays(t, store, id, "2090-09-01", "2091-08-31")
	}
	return store
}

func TestGeneratePlan_PersistsPlan(t *testing.T) {
	ctx := context.Background()
	store := newYearWithCouples(t, 4)
	addAssignments(t, store, "c01", true, "2090-10-02")

	result, err := GeneratePlan(ctx, store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", false)
	require.NoError(t, err)

	assert.False(t, result.DryRun)
	assert.Equal(t, 1, result.ManualCount)
	assert.Empty(t, result.HardConflicts())
	assert.Len(t, result.Assignments, result.Plan.AvailableDays-1)

	byDate := store.AssignmentsByDate("y1")
	assert.Len(t, byDate, result.Plan.AvailableDays)

	manual := byDate["2090-10-02"]
	assert.Equal(t, "c01", manual.FamilyID)
	assert.True(t, manual.IsManual)

	for _, assignment := range result.Assignments {
		assert.Equal(t, "y1", assignment.YearID)
		assert.False(t, assignment.IsManual)
		assert.NotEmpty(t, assignment.ID)
		assert.False(t, model.MustParseDate(assignment.Date).IsWeekend())
	}
}

func TestGeneratePlan_RegenerationReplacesGeneratedOnly(t *testing.T) {
	ctx := context.Background()
	store := newYearWithCouples(t, 3)
	addAssignments(t, store, "c02", true, "2090-11-15")

	first, err := GeneratePlan(ctx, store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", false)
	require.NoError(t, err)

	second, err := GeneratePlan(ctx, store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", false)
	require.NoError(t, err)

	byDate := store.AssignmentsByDate("y1")
	assert.Len(t, byDate, second.Plan.AvailableDays)
	assert.True(t, byDate["2090-11-15"].IsManual)

	// The engine is deterministic, so both runs book the same families
	for i := range first.Assignments {
		assert.Equal(t, first.Assignments[i].FamilyID, second.Assignments[i].FamilyID)
		assert.Equal(t, first.Assignments[i].Date, second.Assignments[i].Date)
		assert.NotEqual(t, first.Assignments[i].ID, second.Assignments[i].ID)
	}
}

func TestGeneratePlan_DryRun(t *testing.T) {
	ctx := context.Background()
	store := newYearWithCouples(t, 2)
	addAssignments(t, store, "c01", false, "2090-09-04")

	result, err := GeneratePlan(ctx, store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", true)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.NotEmpty(t, result.Assignments)

	// Store untouched
	require.Len(t, store.Assignments, 1)
	assert.Equal(t, "a-2090-09-04", store.Assignments[0].ID)
}

func TestGeneratePlan_InactiveFamilyKeepsManualDuty(t *testing.T) {
	ctx := context.Background()
	store := newYearWithCouples(t, 2)
	addFamily(store, "gone", 1, false)
	addAssignments(t, store, "gone", true, "2090-10-03")
	addAssignments(t, store, "gone", false, "2090-10-04")

	result, err := GeneratePlan(ctx, store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", false)
	require.NoError(t, err)

	byDate := store.AssignmentsByDate("y1")
	assert.Equal(t, "gone", byDate["2090-10-03"].FamilyID)
	assert.NotEqual(t, "gone", byDate["2090-10-04"].FamilyID)

	// 03.10. is no longer an available day but stays booked
	assert.Len(t, byDate, result.Plan.AvailableDays+1)
	for _, assignment := range result.Assignments {
		assert.NotEqual(t, "2090-10-03", assignment.Date)
	}
}

func TestGeneratePlan_HonoursCalendar(t *testing.T) {
	ctx := context.Background()
	store := newYearWithCouples(t, 2)
	store.Holidays = []db.Holiday{{ID: "h1", YearID: "y1", Date: "2090-10-05", Name: "Feiertag"}}
	store.Vacations = []db.Vacation{{ID: "v1", YearID: "y1", Start: "2090-10-09", End: "2090-10-13", Name: "Herbstferien"}}

	settings := Settings{
		Closures: func(year model.Year) ([]model.Holiday, error) {
			return []model.Holiday{{Date: model.MustParseDate("2090-10-04"), Name: "Teamtag"}}, nil
		},
	}

	_, err := GeneratePlan(ctx, store, lock.NewMemoryLocker(), zap.NewNop(), settings, "y1", false)
	require.NoError(t, err)

	byDate := store.AssignmentsByDate("y1")
	for _, closed := range []string{"2090-10-04", "2090-10-05", "2090-10-09", "2090-10-11", "2090-10-13"} {
		assert.NotContains(t, byDate, closed)
	}
	assert.Contains(t, byDate, "2090-10-06")
}

func TestGeneratePlan_ClosureError(t *testing.T) {
	store := newYearWithCouples(t, 1)
	settings := Settings{
		Closures: func(model.Year) ([]model.Holiday, error) { return nil, errors.New("bad rule") },
	}

	_, err := GeneratePlan(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), settings, "y1", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad rule")
	assert.Empty(t, store.Assignments)
}

func TestGeneratePlan_UsesPriorLoad(t *testing.T) {
	ctx := context.Background()
	store := newYearWithCouples(t, 2)
	store.PriorLoads = []db.PriorLoad{
		{ID: "p1", FamilyID: "c01", SourceYearID: "y0", LastDate: "2090-07-20", Count: 20},
		{ID: "p2", FamilyID: "c02", SourceYearID: "y0", LastDate: "2090-06-01", Count: 20},
	}

	result, err := GeneratePlan(ctx, store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", true)
	require.NoError(t, err)

	// c02 cooked longer ago and opens the year
	require.NotEmpty(t, result.Assignments)
	assert.Equal(t, "2090-09-01", result.Assignments[0].Date)
	assert.Equal(t, "c02", result.Assignments[0].FamilyID)
}

func TestGeneratePlan_Locked(t *testing.T) {
	ctx := context.Background()
	store := newYearWithCouples(t, 1)
	locker := lock.NewMemoryLocker()

	release, err := locker.Acquire(ctx, lock.YearKey("y1"))
	require.NoError(t, err)

	_, err = GeneratePlan(ctx, store, locker, zap.NewNop(), Settings{}, "y1", false)
	assert.ErrorIs(t, err, lock.ErrLocked)
	assert.Empty(t, store.Assignments)

	require.NoError(t, release(ctx))

	_, err = GeneratePlan(ctx, store, locker, zap.NewNop(), Settings{}, "y1", false)
	assert.NoError(t, err)
}

func TestGeneratePlan_UnknownYear(t *testing.T) {
	store := newYearWithCouples(t, 1)

	_, err := GeneratePlan(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "nope", false)
	assert.ErrorIs(t, err, ErrYearNotFound)
}

func TestGeneratePlan_SaveError(t *testing.T) {
	store := newYearWithCouples(t, 1)
	store.Errors["ReplaceGeneratedAssignments"] = errors.New("connection reset")

	_, err := GeneratePlan(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save plan")
}

func TestGeneratePlan_NoFamilies(t *testing.T) {
	store := newStore("2090-09-01", "2091-08-31")

	result, err := GeneratePlan(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", false)
	require.NoError(t, err)

	assert.Empty(t, result.Assignments)
	assert.Equal(t, []string{"Keine Familien vorhanden."}, result.Plan.Conflicts)
}

func TestDeletePlan(t *testing.T) {
	ctx := context.Background()
	store := newYearWithCouples(t, 1)
	store.Years = append(store.Years, db.Year{ID: "y2", Start: "2091-09-01", End: "2092-08-31"})
	addAssignments(t, store, "c01", true, "2090-10-02")
	addAssignments(t, store, "c01", false, "2090-10-03")
	require.NoError(t, store.InsertAssignment(ctx, &db.Assignment{ID: "other", YearID: "y2", FamilyID: "c01", Date: "2091-10-02"}))

	deleted, err := DeletePlan(ctx, store, lock.NewMemoryLocker(), zap.NewNop(), "y1")
	require.NoError(t, err)

	assert.Equal(t, 2, deleted)
	require.Len(t, store.Assignments, 1)
	assert.Equal(t, "other", store.Assignments[0].ID)

	_, err = DeletePlan(ctx, store, lock.NewMemoryLocker(), zap.NewNop(), "y9")
	assert.ErrorIs(t, err, ErrYearNotFound)
}
