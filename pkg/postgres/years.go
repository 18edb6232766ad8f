package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/cooking-rota/pkg/db"
)

// GetYears retrieves all school years ordered by start date
func (d *DB) GetYears(ctx context.Context) ([]db.Year, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, start_date, end_date, active
		FROM years
		ORDER BY start_date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}
	defer rows.Close()

	var years []db.Year
	for rows.Next() {
		var y db.Year
		var start, end time.Time
		if err := rows.Scan(&y.ID, &start, &end, &y.Active); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		y.Start = formatDate(start)
		y.End = formatDate(end)
		years = append(years, y)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating years: %w", err)
	}

	return years, nil
}

// InsertYear inserts a new school year record
func (d *DB) InsertYear(ctx context.Context, year *db.Year) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO years (id, start_date, end_date, active)
		VALUES ($1, $2, $3, $4)
	`, year.ID, year.Start, year.End, year.Active)
	if err != nil {
		return fmt.Errorf("failed to insert year: %w", err)
	}
	return nil
}

// SetActiveYear deactivates every year and activates the given one
func (d *DB) SetActiveYear(ctx context.Context, yearID string) error {
	return d.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE years SET active = FALSE WHERE active`); err != nil {
			return fmt.Errorf("failed to deactivate years: %w", err)
		}

		tag, err := tx.Exec(ctx, `UPDATE years SET active = TRUE WHERE id = $1`, yearID)
		if err != nil {
			return fmt.Errorf("failed to activate year: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("year %s not found", yearID)
		}
		return nil
	})
}
