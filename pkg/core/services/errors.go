package services

import "errors"

var (
	ErrYearNotFound   = errors.New("year not found")
	ErrFamilyNotFound = errors.New("family not found")
	ErrNoActiveYear   = errors.New("no active year")
	ErrInvalidDate    = errors.New("invalid date")
	// ErrDateExcluded is returned for dates outside the year or on a closure day
	ErrDateExcluded = errors.New("date is not a cooking day")
	// ErrManualConflict is returned when a manual assignment would overwrite another manual one
	ErrManualConflict = errors.New("date already has a manual assignment")
)
