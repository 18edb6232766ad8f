package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/cooking-rota/pkg/db"
)

// GetPriorLoads retrieves every carried-over load record
func (d *DB) GetPriorLoads(ctx context.Context) ([]db.PriorLoad, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, family_id, source_year_id, last_date, count
		FROM prior_loads
		ORDER BY last_date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prior loads: %w", err)
	}
	defer rows.Close()

	var loads []db.PriorLoad
	for rows.Next() {
		var l db.PriorLoad
		var sourceYearID *string
		var lastDate time.Time
		if err := rows.Scan(&l.ID, &l.FamilyID, &sourceYearID, &lastDate, &l.Count); err != nil {
			return nil, fmt.Errorf("failed to scan prior load: %w", err)
		}
		if sourceYearID != nil {
			l.SourceYearID = *sourceYearID
		}
		l.LastDate = formatDate(lastDate)
		loads = append(loads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prior loads: %w", err)
	}

	return loads, nil
}

// InsertPriorLoad inserts a carried-over load record
func (d *DB) InsertPriorLoad(ctx context.Context, load *db.PriorLoad) error {
	var sourceYearID *string
	if load.SourceYearID != "" {
		sourceYearID = &load.SourceYearID
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO prior_loads (id, family_id, source_year_id, last_date, count)
		VALUES ($1, $2, $3, $4, $5)
	`, load.ID, load.FamilyID, sourceYearID, load.LastDate, load.Count)
	if err != nil {
		return fmt.Errorf("failed to insert prior load: %w", err)
	}
	return nil
}

// UpdatePriorLoad overwrites last date and count of an existing record
func (d *DB) UpdatePriorLoad(ctx context.Context, load *db.PriorLoad) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE prior_loads SET last_date = $2, count = $3 WHERE id = $1
	`, load.ID, load.LastDate, load.Count)
	if err != nil {
		return fmt.Errorf("failed to update prior load: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("prior load %s not found", load.ID)
	}
	return nil
}
