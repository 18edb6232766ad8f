package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/internal/testutil"
	"github.com/jakechorley/cooking-rota/pkg/db"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

func newAssignStore(t *testing.T) *testutil.Store {
	store := newStore("2090-10-02", "2090-10-13")
	addFamily(store, "c01", 2, true)
	addFamily(store, "c02", 2, true)
	addFamily(store, "c03", 2, false)
	addAssignments(t, store, "c02", false, "2090-10-04")
	addAssignments(t, store, "c02", true, "2090-10-05")
	store.Holidays = []db.Holiday{{ID: "h1", YearID: "y1", Date: "2090-10-03", Name: "Tag der Deutschen Einheit"}}
	return store
}

func TestAssignManually_ReplacesGenerated(t *testing.T) {
	store := newAssignStore(t)

	result, err := AssignManually(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", "c01", "2090-10-04")
	require.NoError(t, err)

	require.NotNil(t, result.Replaced)
	assert.Equal(t, "a-2090-10-04", result.Replaced.ID)
	assert.Equal(t, "c01", result.Assignment.FamilyID)
	assert.True(t, result.Assignment.IsManual)

	byDate := store.AssignmentsByDate("y1")
	assert.Equal(t, "c01", byDate["2090-10-04"].FamilyID)
	assert.True(t, byDate["2090-10-04"].IsManual)
	assert.Len(t, byDate, 2)

	require.Len(t, store.AppliedChanges, 1)
	assert.Equal(t, []string{"a-2090-10-04"}, store.AppliedChanges[0].DeletedAssignmentIDs)
	assert.Len(t, store.AppliedChanges[0].Inserted, 1)
}

func TestAssignManually_FreeDay(t *testing.T) {
	store := newAssignStore(t)

	result, err := AssignManually(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", "c01", "2090-10-10")
	require.NoError(t, err)

	assert.Nil(t, result.Replaced)
	assert.Equal(t, "2090-10-10", result.Assignment.Date)
	assert.Equal(t, "y1", result.Assignment.YearID)
	assert.Len(t, store.Assignments, 3)
}

func TestAssignManually_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		familyID string
		date     string
		wantErr  error
	}{
		{name: "manual duty is kept", familyID: "c01", date: "2090-10-05", wantErr: ErrManualConflict},
		{name: "weekend", familyID: "c01", date: "2090-10-07", wantErr: ErrDateExcluded},
		{name: "holiday", familyID: "c01", date: "2090-10-03", wantErr: ErrDateExcluded},
		{name: "outside the year", familyID: "c01", date: "2090-11-02", wantErr: ErrDateExcluded},
		{name: "inactive family", familyID: "c03", date: "2090-10-10", wantErr: ErrFamilyNotFound},
		{name: "unknown family", familyID: "ghost", date: "2090-10-10", wantErr: ErrFamilyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newAssignStore(t)

			_, err := AssignManually(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", tt.familyID, tt.date)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, store.Assignments, 2)
		})
	}
}

func TestAssignManually_InvalidDate(t *testing.T) {
	store := newAssignStore(t)

	_, err := AssignManually(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", "c01", "10.10.2090")
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Len(t, store.Assignments, 2)
}

func TestAssignManually_SaveFailureKeepsGeneratedDuty(t *testing.T) {
	store := newAssignStore(t)
	store.Errors["ApplyPlanChanges"] = errors.New("insert failed")

	_, err := AssignManually(context.Background(), store, lock.NewMemoryLocker(), zap.NewNop(), Settings{}, "y1", "c01", "2090-10-04")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert failed")

	byDate := store.AssignmentsByDate("y1")
	require.Contains(t, byDate, "2090-10-04")
	assert.Equal(t, "a-2090-10-04", byDate["2090-10-04"].ID)
	assert.Equal(t, "c02", byDate["2090-10-04"].FamilyID)
	assert.False(t, byDate["2090-10-04"].IsManual)
}
