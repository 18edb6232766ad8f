package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakechorley/cooking-rota/internal/testutil"
	"github.com/jakechorley/cooking-rota/pkg/core/model"
	"github.com/jakechorley/cooking-rota/pkg/db"
)

// newStore returns a store holding year y1 from start to end
func newStore(start, end string) *testutil.Store {
	store := testutil.NewStore()
	store.Years = []db.Year{{ID: "y1", Start: start, End: end, Active: true}}
	return store
}

func addFamily(store *testutil.Store, id string, parentCount int, active bool) {
	store.Families = append(store.Families, db.Family{
		ID:          id,
		Name:        "Familie " + id,
		ParentCount: parentCount,
		Active:      active,
	})
}

// availableOnWeekdays makes a family available on every Monday to Friday between start and end
func availableOnWeekdays(t *testing.T, store *testutil.Store, familyID, start, end string) {
	t.Helper()

	dates := make([]string, 0)
	for d := model.MustParseDate(start); !d.After(model.MustParseDate(end)); d = d.AddDays(1) {
		if !d.IsWeekend() {
			dates = append(dates, d.String())
		}
	}
	require.NoError(t, store.UpsertAvailability(t.Context(), &db.Availability{
		ID:       "av-" + familyID,
		YearID:   "y1",
		FamilyID: familyID,
		Dates:    dates,
	}))
}

func addAssignments(t *testing.T, store *testutil.Store, familyID string, manual bool, dates ...string) {
	t.Helper()

	for _, date := range dates {
		require.NoError(t, store.InsertAssignment(t.Context(), &db.Assignment{
			ID:       "a-" + date,
			YearID:   "y1",
			FamilyID: familyID,
			Date:     date,
			IsManual: manual,
		}))
	}
}

func settingsAt(today string) Settings {
	return Settings{Today: model.MustParseDate(today)}
}
