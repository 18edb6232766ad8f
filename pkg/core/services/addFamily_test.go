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
	"github.com/jakechorley/cooking-rota/pkg/core/planner"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

func newJoinStore(t *testing.T) *testutil.Store {
	store := newStore("2090-10-02", "2090-10-13")
	addFamily(store, "c01", 2, true)
	addFamily(store, "c02", 2, true)
	addFamily(store, "c03", 2, false)
	addAssignments(t, store, "c01", false, "2090-10-02")
	addAssignments(t, store, "c01", true, "2090-10-03")
	addAssignments(t, store, "c01", false, "2090-10-04", "2090-10-05", "2090-10-06", "2090-10-09")
	addAssignments(t, store, "c02", false, "2090-10-10", "2090-10-11", "2090-10-12", "2090-10-13")
	return store
}

func TestAddFamilyToPlan_TransfersDuties(t *testing.T) {
	store := newJoinStore(t)
	availableOnWeekdays(t, store, "c03", "2090-10-02", "2090-10-13")

	result, err := AddFamilyToPlan(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), settingsAt("2090-10-02"), "y1", "c03")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Target)
	assert.Equal(t, 3, result.Transferred)
	assert.Empty(t, result.Conflicts)
	assert.Equal(t, []planner.Reassignment{
		{Date: model.MustParseDate("2090-10-04"), From: "c01", To: "c03"},
		{Date: model.MustParseDate("2090-10-09"), From: "c01", To: "c03"},
		{Date: model.MustParseDate("2090-10-13"), From: "c02", To: "c03"},
	}, result.Transfers)

	family, ok := store.Family("c03")
	require.True(t, ok)
	assert.True(t, family.Active)

	byDate := store.AssignmentsByDate("y1")
	assert.Len(t, byDate, 10)
	for _, date := range []string{"2090-10-04", "2090-10-09", "2090-10-13"} {
		assert.Equal(t, "c03", byDate[date].FamilyID, date)
	}
	assert.Equal(t, "c01", byDate["2090-10-03"].FamilyID)
	require.Len(t, store.AppliedChanges, 1)
	assert.Len(t, store.AppliedChanges[0].Reassignments, 3)
	assert.Equal(t, "c03", store.AppliedChanges[0].ActivateFamilyID)
}

func TestAddFamilyToPlan_ApplyErrorKeepsFamilyInactive(t *testing.T) {
	store := newJoinStore(t)
	availableOnWeekdays(t, store, "c03", "2090-10-02", "2090-10-13")
	store.Errors["ApplyPlanChanges"] = errors.New("tx aborted")

	_, err := AddFamilyToPlan(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), settingsAt("2090-10-02"), "y1", "c03")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply transfers")

	family, _ := store.Family("c03")
	assert.False(t, family.Active)
	assert.Equal(t, "c01", store.AssignmentsByDate("y1")["2090-10-04"].FamilyID)
}

func TestAddFamilyToPlan_NoAvailability(t *testing.T) {
	store := newJoinStore(t)

	result, err := AddFamilyToPlan(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), settingsAt("2090-10-02"), "y1", "c03")
	require.NoError(t, err)

	assert.Zero(t, result.Transferred)
	assert.Contains(t, result.Conflicts, planner.ConflictNoAvailability)
	require.Len(t, store.AppliedChanges, 1)
	assert.Equal(t, "c03", store.AppliedChanges[0].ActivateFamilyID)
	assert.Empty(t, store.AppliedChanges[0].Reassignments)

	family, _ := store.Family("c03")
	assert.True(t, family.Active)
}

func TestAddFamilyToPlan_UnknownFamily(t *testing.T) {
	store := newJoinStore(t)

	_, err := AddFamilyToPlan(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), settingsAt("2090-10-02"), "y1", "ghost")
	assert.ErrorIs(t, err, ErrFamilyNotFound)
}

func TestAddFamilyToPlan_Locked(t *testing.T) {
	ctx := context.Background()
	store := newJoinStore(t)
	locker := lock.NewMemoryLocker()
	_, err := locker.Acquire(ctx, lock.YearKey("y1"))
	require.NoError(t, err)

	_, err = AddFamilyToPlan(ctx, store, locker, zap.NewNop(), settingsAt("2090-10-02"), "y1", "c03")
	assert.ErrorIs(t, err, lock.ErrLocked)

	family, _ := store.Family("c03")
	assert.False(t, family.Active)
}
