package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/cooking-rota/pkg/db"
)

// GetHolidays retrieves the holidays of a year ordered by date
func (d *DB) GetHolidays(ctx context.Context, yearID string) ([]db.Holiday, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, year_id, date, name
		FROM holidays
		WHERE year_id = $1
		ORDER BY date
	`, yearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []db.Holiday
	for rows.Next() {
		var h db.Holiday
		var date time.Time
		if err := rows.Scan(&h.ID, &h.YearID, &date, &h.Name); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		h.Date = formatDate(date)
		holidays = append(holidays, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holidays: %w", err)
	}

	return holidays, nil
}

// InsertHolidays inserts holiday records in one transaction
func (d *DB) InsertHolidays(ctx context.Context, holidays []db.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}

	return d.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, h := range holidays {
			batch.Queue(`
				INSERT INTO holidays (id, year_id, date, name)
				VALUES ($1, $2, $3, $4)
			`, h.ID, h.YearID, h.Date, h.Name)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert holidays: %w", err)
		}
		return nil
	})
}

// DeleteHolidays removes every holiday of a year
func (d *DB) DeleteHolidays(ctx context.Context, yearID string) error {
	if _, err := d.pool.Exec(ctx, `DELETE FROM holidays WHERE year_id = $1`, yearID); err != nil {
		return fmt.Errorf("failed to delete holidays: %w", err)
	}
	return nil
}

// GetVacations retrieves the vacation ranges of a year ordered by start date
func (d *DB) GetVacations(ctx context.Context, yearID string) ([]db.Vacation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, year_id, start_date, end_date, name
		FROM vacations
		WHERE year_id = $1
		ORDER BY start_date
	`, yearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vacations: %w", err)
	}
	defer rows.Close()

	var vacations []db.Vacation
	for rows.Next() {
		var v db.Vacation
		var start, end time.Time
		if err := rows.Scan(&v.ID, &v.YearID, &start, &end, &v.Name); err != nil {
			return nil, fmt.Errorf("failed to scan vacation: %w", err)
		}
		v.Start = formatDate(start)
		v.End = formatDate(end)
		vacations = append(vacations, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vacations: %w", err)
	}

	return vacations, nil
}

// InsertVacation inserts a vacation range
func (d *DB) InsertVacation(ctx context.Context, vacation *db.Vacation) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO vacations (id, year_id, start_date, end_date, name)
		VALUES ($1, $2, $3, $4, $5)
	`, vacation.ID, vacation.YearID, vacation.Start, vacation.End, vacation.Name)
	if err != nil {
		return fmt.Errorf("failed to insert vacation: %w", err)
	}
	return nil
}
