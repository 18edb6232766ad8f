package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/internal/testutil"
	"github.com/jakechorley/cooking-rota/pkg/core/model"
	"github.com/jakechorley/cooking-rota/pkg/db"
	"github.com/jakechorley/cooking-rota/pkg/lock"
)

func TestLatestPriorLoads(t *testing.T) {
	span := model.Year{Start: model.MustParseDate("2090-09-01"), End: model.MustParseDate("2091-08-31")}
	families := []model.Family{{ID: "f1", ParentCount: 2}, {ID: "f2", ParentCount: 1}}

	loads := []db.PriorLoad{
		{FamilyID: "f1", LastDate: "2089-07-10", Count: 30},
		{FamilyID: "f1", LastDate: "2090-07-20", Count: 25},
		// Ends inside the year, so it is not prior
		{FamilyID: "f2", LastDate: "2090-09-15", Count: 5},
		{FamilyID: "f2", LastDate: "2090-06-30", Count: 12},
		// Not part of the population
		{FamilyID: "f9", LastDate: "2090-06-30", Count: 40},
	}

	latest, err := latestPriorLoads(loads, span, families)
	require.NoError(t, err)

	assert.Equal(t, map[model.FamilyID]model.PriorLoad{
		"f1": {LastDate: model.MustParseDate("2090-07-20"), Count: 25},
		"f2": {LastDate: model.MustParseDate("2090-06-30"), Count: 12},
	}, latest)
}

func TestLatestPriorLoads_InvalidDate(t *testing.T) {
	span := model.Year{Start: model.MustParseDate("2090-09-01"), End: model.MustParseDate("2091-08-31")}

	_, err := latestPriorLoads([]db.PriorLoad{{FamilyID: "f1", LastDate: "soon"}}, span, []model.Family{{ID: "f1"}})
	assert.Error(t, err)
}

func TestSettingsToday(t *testing.T) {
	fixed := Settings{Today: model.MustParseDate("2090-10-11")}
	assert.Equal(t, model.MustParseDate("2090-10-11"), fixed.today())

	zone := time.FixedZone("UTC+14", 14*60*60)
	assert.Equal(t, model.DateOf(time.Now().In(zone)), Settings{Location: zone}.today())
}

func TestWithYearLock_ReleasesOnError(t *testing.T) {
	ctx := context.Background()
	locker := lock.NewMemoryLocker()
	boom := errors.New("boom")

	err := withYearLock(ctx, locker, zap.NewNop(), "y1", func() error { return boom })
	assert.ErrorIs(t, err, boom)

	release, err := locker.Acquire(ctx, lock.YearKey("y1"))
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestLoadSnapshot_ExcludesManualDutiesOfInactiveFamilies(t *testing.T) {
	ctx := context.Background()
	store := newStore("2090-10-02", "2090-10-13")
	addFamily(store, "c01", 2, true)
	addFamily(store, "gone", 2, false)
	addAssignments(t, store, "gone", true, "2090-10-05")
	addAssignments(t, store, "gone", false, "2090-10-06")

	snap, err := loadSnapshot(ctx, store, zap.NewNop(), Settings{}, "y1")
	require.NoError(t, err)

	assert.Equal(t, "Dienst von Familie gone", snap.excluded[model.MustParseDate("2090-10-05")])
	assert.False(t, snap.excluded.IsExcluded(model.MustParseDate("2090-10-06")))
	assert.Equal(t, []model.Family{{ID: "c01", Name: "Familie c01", ParentCount: 2}}, snap.activeFamilies())
	assert.Len(t, snap.activeFamilies("gone"), 2)
}

func TestLoadSnapshot_StoreErrors(t *testing.T) {
	for _, method := range []string{"GetYears", "GetHolidays", "GetVacations", "GetFamilies", "GetAvailability", "GetAssignments"} {
		t.Run(method, func(t *testing.T) {
			store := newStore("2090-10-02", "2090-10-13")
			store.Errors[method] = errors.New("db down")

			_, err := loadSnapshot(context.Background(), store, zap.NewNop(), Settings{}, "y1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "db down")
		})
	}
}

func TestActiveYearID(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()

	_, err := ActiveYearID(ctx, store)
	assert.ErrorIs(t, err, ErrNoActiveYear)

	store.Years = []db.Year{
		{ID: "y-1", Start: "2089-09-01", End: "2090-08-31"},
		{ID: "y-2", Start: "2090-09-01", End: "2091-08-31", Active: true},
	}

	id, err := ActiveYearID(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "y-2", id)
}

func TestWithYearLock_Locked(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	locker := lock.NewMockLocker(ctrl)
	ctx := context.Background()

	locker.EXPECT().Acquire(ctx, "cooking-rota:plan-lock:y1").Return(nil, lock.ErrLocked)

	called := false
	err := withYearLock(ctx, locker, zap.NewNop(), "y1", func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, lock.ErrLocked)
	assert.False(t, called)
}

func TestWithYearLock_ReleaseFailureKeepsResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	locker := lock.NewMockLocker(ctrl)
	ctx := context.Background()

	released := 0
	release := func(context.Context) error {
		released++
		return errors.New("redis gone")
	}
	locker.EXPECT().Acquire(ctx, lock.YearKey("y1")).Return(lock.Release(release), nil)

	err := withYearLock(ctx, locker, zap.NewNop(), "y1", func() error { return nil })

	assert.NoError(t, err)
	assert.Equal(t, 1, released)
}

func TestGeneratePlan_LockedWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newStore("2090-10-02", "2090-10-13")
	addFamily(store, "c01", 2, true)

	locker := lock.NewMockLocker(ctrl)
	locker.EXPECT().Acquire(gomock.Any(), lock.YearKey("y1")).Return(nil, lock.ErrLocked)

	_, err := GeneratePlan(context.Background(), store, locker, zap.NewNop(), Settings{}, "y1", false)

	assert.ErrorIs(t, err, lock.ErrLocked)
	assert.Empty(t, store.Assignments)
}
