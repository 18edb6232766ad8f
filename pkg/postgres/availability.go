package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/cooking-rota/pkg/db"
)

// GetAvailability retrieves the availability records of a year
func (d *DB) GetAvailability(ctx context.Context, yearID string) ([]db.Availability, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, year_id, family_id, dates
		FROM availability
		WHERE year_id = $1
	`, yearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	var records []db.Availability
	for rows.Next() {
		var a db.Availability
		var dates []time.Time
		if err := rows.Scan(&a.ID, &a.YearID, &a.FamilyID, &dates); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		a.Dates = make([]string, len(dates))
		for i, date := range dates {
			a.Dates[i] = formatDate(date)
		}
		records = append(records, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability: %w", err)
	}

	return records, nil
}

// UpsertAvailability inserts the availability of a family or replaces its dates
func (d *DB) UpsertAvailability(ctx context.Context, availability *db.Availability) error {
	dates, err := parseDates(availability.Dates)
	if err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO availability (id, year_id, family_id, dates)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year_id, family_id) DO UPDATE SET dates = EXCLUDED.dates
	`, availability.ID, availability.YearID, availability.FamilyID, dates)
	if err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}
	return nil
}
