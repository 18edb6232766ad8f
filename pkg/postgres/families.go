package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/cooking-rota/pkg/db"
)

// GetFamilies retrieves all families, active or not
func (d *DB) GetFamilies(ctx context.Context) ([]db.Family, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, email, parent_count, active
		FROM families
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []db.Family
	for rows.Next() {
		var f db.Family
		var email *string
		if err := rows.Scan(&f.ID, &f.Name, &email, &f.ParentCount, &f.Active); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		if email != nil {
			f.Email = *email
		}
		families = append(families, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating families: %w", err)
	}

	return families, nil
}

// InsertFamily inserts a new family record
func (d *DB) InsertFamily(ctx context.Context, family *db.Family) error {
	var email *string
	if family.Email != "" {
		email = &family.Email
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO families (id, name, email, parent_count, active)
		VALUES ($1, $2, $3, $4, $5)
	`, family.ID, family.Name, email, family.ParentCount, family.Active)
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}
	return nil
}
