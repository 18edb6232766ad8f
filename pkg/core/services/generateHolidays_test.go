package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/db"
)

func TestGenerateHolidays(t *testing.T) {
	ctx := context.Background()
	store := newStore("2025-09-01", "2026-08-31")

	result, err := GenerateHolidays(ctx, store, zap.NewNop(), "y1", false)
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	require.Len(t, result.Inserted, 12)
	assert.Equal(t, "2025-10-03", result.Inserted[0].Date)
	assert.Equal(t, "y1", result.Inserted[0].YearID)
	assert.Len(t, store.Holidays, 12)
}

func TestGenerateHolidays_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	store := newStore("2025-09-01", "2026-08-31")
	store.Holidays = []db.Holiday{{ID: "h1", YearID: "y1", Date: "2025-10-31", Name: "Brückentag"}}

	result, err := GenerateHolidays(ctx, store, zap.NewNop(), "y1", false)
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Equal(t, 1, result.Existing)
	assert.Len(t, store.Holidays, 1)
}

func TestGenerateHolidays_Force(t *testing.T) {
	ctx := context.Background()
	store := newStore("2025-09-01", "2026-08-31")
	store.Holidays = []db.Holiday{{ID: "h1", YearID: "y1", Date: "2025-10-31", Name: "Brückentag"}}

	result, err := GenerateHolidays(ctx, store, zap.NewNop(), "y1", true)
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 1, result.Existing)
	assert.Len(t, store.Holidays, 12)
	for _, h := range store.Holidays {
		assert.NotEqual(t, "h1", h.ID)
	}
}
