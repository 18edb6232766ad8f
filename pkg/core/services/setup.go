package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/core/model"
	"github.com/jakechorley/cooking-rota/pkg/db"
)

// CreateYear stores a new school year; it must not overlap an existing one
func CreateYear(ctx context.Context, database db.YearStore, logger *zap.Logger, startStr, endStr string) (*db.Year, error) {
	logger.Debug("Creating year", zap.String("start", startStr), zap.String("end", endStr))

	start, err := model.ParseDate(startStr)
	if err != nil {
		return nil, fmt.Errorf("%w: start: %w", ErrInvalidDate, err)
	}
	end, err := model.ParseDate(endStr)
	if err != nil {
		return nil, fmt.Errorf("%w: end: %w", ErrInvalidDate, err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("year end %s must be after start %s", end, start)
	}

	years, err := database.GetYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch years: %w", err)
	}
	for _, existing := range years {
		span, err := toModelYear(existing)
		if err != nil {
			return nil, err
		}
		if !start.After(span.End) && !end.Before(span.Start) {
			return nil, fmt.Errorf("year %s - %s overlaps existing year %s", start, end, existing.ID)
		}
	}

	year := &db.Year{
		ID:     uuid.New().String(),
		Start:  start.String(),
		End:    end.String(),
		Active: false,
	}
	if err := database.InsertYear(ctx, year); err != nil {
		return nil, fmt.Errorf("failed to insert year: %w", err)
	}

	logger.Info("Year created", zap.String("year_id", year.ID), zap.String("start", year.Start), zap.String("end", year.End))
	return year, nil
}

// AddVacation stores a closure range of a year
func AddVacation(ctx context.Context, database HolidayStore, logger *zap.Logger, yearID, name, startStr, endStr string) (*db.Vacation, error) {
	logger.Debug("Adding vacation", zap.String("year_id", yearID), zap.String("name", name))

	if name == "" {
		return nil, errors.New("vacation name is required")
	}

	year, span, err := findYear(ctx, database, yearID)
	if err != nil {
		return nil, err
	}

	start, err := model.ParseDate(startStr)
	if err != nil {
		return nil, fmt.Errorf("%w: start: %w", ErrInvalidDate, err)
	}
	end, err := model.ParseDate(endStr)
	if err != nil {
		return nil, fmt.Errorf("%w: end: %w", ErrInvalidDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("vacation end %s is before start %s", end, start)
	}
	if !span.Contains(start) && !span.Contains(end) {
		return nil, fmt.Errorf("%w: vacation %s - %s lies outside the year", ErrDateExcluded, start, end)
	}

	vacation := &db.Vacation{
		ID:     uuid.New().String(),
		YearID: year.ID,
		Start:  start.String(),
		End:    end.String(),
		Name:   name,
	}
	if err := database.InsertVacation(ctx, vacation); err != nil {
		return nil, fmt.Errorf("failed to insert vacation: %w", err)
	}

	logger.Info("Vacation added", zap.String("year_id", year.ID), zap.String("name", name))
	return vacation, nil
}

// RegisterFamily stores a new household; parentCount must be 1 or 2
func RegisterFamily(ctx context.Context, database db.FamilyStore, logger *zap.Logger, name, email string, parentCount int, active bool) (*db.Family, error) {
	logger.Debug("Registering family", zap.String("name", name), zap.Int("parent_count", parentCount))

	if name == "" {
		return nil, errors.New("family name is required")
	}
	if parentCount != 1 && parentCount != 2 {
		return nil, fmt.Errorf("parent count must be 1 or 2, got %d", parentCount)
	}

	family := &db.Family{
		ID:          uuid.New().String(),
		Name:        name,
		Email:       email,
		ParentCount: parentCount,
		Active:      active,
	}
	if err := database.InsertFamily(ctx, family); err != nil {
		return nil, fmt.Errorf("failed to insert family: %w", err)
	}

	logger.Info("Family registered", zap.String("family_id", family.ID), zap.String("name", name), zap.Bool("active", active))
	return family, nil
}

// AvailabilityStore defines the database operations needed to record availability
type AvailabilityStore interface {
	db.YearStore
	db.FamilyStore
	db.AvailabilityStore
}

// SetAvailability replaces the cooking days a family offers in a year.
// Every listed weekday of the year is added to the explicit dates; weekend days are dropped.
func SetAvailability(
	ctx context.Context,
	database AvailabilityStore,
	logger *zap.Logger,
	yearID string,
	familyID string,
	dates []string,
	weekdays []time.Weekday,
) (*db.Availability, error) {
	logger.Debug("Setting availability",
		zap.String("year_id", yearID),
		zap.String("family_id", familyID),
		zap.Int("dates", len(dates)),
		zap.Int("weekdays", len(weekdays)))

	year, span, err := findYear(ctx, database, yearID)
	if err != nil {
		return nil, err
	}

	families, err := database.GetFamilies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch families: %w", err)
	}
	found := false
	for _, family := range families {
		if family.ID == familyID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrFamilyNotFound, familyID)
	}

	set, err := toDateSet(dates)
	if err != nil {
		return nil, err
	}
	for d := range set {
		if !span.Contains(d) {
			return nil, fmt.Errorf("%w: %s is outside the year", ErrDateExcluded, d.German())
		}
	}

	wanted := make(map[time.Weekday]bool, len(weekdays))
	for _, w := range weekdays {
		wanted[w] = true
	}
	for _, d := range span.Days() {
		if wanted[d.Weekday()] {
			set.Add(d)
		}
	}

	sorted := set.Sorted()
	availability := &db.Availability{
		ID:       uuid.New().String(),
		YearID:   year.ID,
		FamilyID: familyID,
		Dates:    make([]string, 0, len(sorted)),
	}
	for _, d := range sorted {
		if !d.IsWeekend() {
			availability.Dates = append(availability.Dates, d.String())
		}
	}

	if err := database.UpsertAvailability(ctx, availability); err != nil {
		return nil, fmt.Errorf("failed to save availability: %w", err)
	}

	logger.Info("Availability saved",
		zap.String("year_id", year.ID),
		zap.String("family_id", familyID),
		zap.Int("dates", len(availability.Dates)))

	return availability, nil
}
