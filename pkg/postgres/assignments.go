package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/cooking-rota/pkg/db"
)

// GetAssignments retrieves the assignments of a year ordered by date
func (d *DB) GetAssignments(ctx context.Context, yearID string) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, year_id, family_id, date, is_manual
		FROM assignments
		WHERE year_id = $1
		ORDER BY date
	`, yearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		var date time.Time
		if err := rows.Scan(&a.ID, &a.YearID, &a.FamilyID, &date, &a.IsManual); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.Date = formatDate(date)
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// InsertAssignment inserts a single assignment
func (d *DB) InsertAssignment(ctx context.Context, assignment *db.Assignment) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO assignments (id, year_id, family_id, date, is_manual)
		VALUES ($1, $2, $3, $4, $5)
	`, assignment.ID, assignment.YearID, assignment.FamilyID, assignment.Date, assignment.IsManual)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

// ReplaceGeneratedAssignments swaps the generated part of a plan in one transaction.
// Manual assignments are kept.
func (d *DB) ReplaceGeneratedAssignments(ctx context.Context, yearID string, assignments []db.Assignment) error {
	return d.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM assignments WHERE year_id = $1 AND NOT is_manual`, yearID)
		if err != nil {
			return fmt.Errorf("failed to delete generated assignments: %w", err)
		}
		d.logger.Debug("Deleted generated assignments",
			zap.String("year_id", yearID),
			zap.Int64("count", tag.RowsAffected()))

		// COPY uses the binary protocol, so dates go in as time.Time
		rows := make([][]any, 0, len(assignments))
		for _, a := range assignments {
			date, err := time.Parse(dateLayout, a.Date)
			if err != nil {
				return fmt.Errorf("invalid assignment date %q: %w", a.Date, err)
			}
			rows = append(rows, []any{a.ID, yearID, a.FamilyID, date, a.IsManual})
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"assignments"},
			[]string{"id", "year_id", "family_id", "date", "is_manual"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("failed to insert assignments: %w", err)
		}
		return nil
	})
}

// DeleteAssignments removes the whole plan of a year and returns the number of deleted rows
func (d *DB) DeleteAssignments(ctx context.Context, yearID string) (int, error) {
	tag, err := d.pool.Exec(ctx, `DELETE FROM assignments WHERE year_id = $1`, yearID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete assignments: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ApplyPlanChanges moves, deletes, inserts and toggles families in a single transaction.
// Moved assignments lose their manual flag. Deletes run before inserts so a freed date can be rebooked.
func (d *DB) ApplyPlanChanges(ctx context.Context, changes db.PlanChanges) error {
	if changes.IsEmpty() {
		return nil
	}

	return d.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range changes.Reassignments {
			batch.Queue(`UPDATE assignments SET family_id = $2, is_manual = FALSE WHERE id = $1`, r.AssignmentID, r.FamilyID)
		}
		for _, id := range changes.DeletedAssignmentIDs {
			batch.Queue(`DELETE FROM assignments WHERE id = $1`, id)
		}
		for _, a := range changes.Inserted {
			batch.Queue(`
				INSERT INTO assignments (id, year_id, family_id, date, is_manual)
				VALUES ($1, $2, $3, $4, $5)
			`, a.ID, a.YearID, a.FamilyID, a.Date, a.IsManual)
		}
		if changes.ActivateFamilyID != "" {
			batch.Queue(`UPDATE families SET active = TRUE WHERE id = $1`, changes.ActivateFamilyID)
		}
		if changes.DeactivateFamilyID != "" {
			batch.Queue(`UPDATE families SET active = FALSE WHERE id = $1`, changes.DeactivateFamilyID)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to apply plan changes: %w", err)
		}
		return nil
	})
}
