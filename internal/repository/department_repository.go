package repository

import (
	"context"
	"database/sql"

	"github.com/kolade/campus-election/internal/model"
)

// DepartmentRepo manages persistence for departments.
type DepartmentRepo struct {
	db *sql.DB
}

// NewDepartmentRepo returns a new DepartmentRepo bound to the given database.
func NewDepartmentRepo(db *sql.DB) *DepartmentRepo { return &DepartmentRepo{db: db} }

// Create inserts a department and populates the generated ID.
func (r *DepartmentRepo) Create(ctx context.Context, d *model.Department) error {
	const q = `INSERT INTO departments (name, short_name, is_active) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, d.Name, d.ShortName, d.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// GetByID fetches one department. Returns sql.ErrNoRows when absent.
func (r *DepartmentRepo) GetByID(ctx context.Context, id uint64) (model.Department, error) {
	const q = `SELECT id, name, short_name, is_active, created_at, updated_at FROM departments WHERE id = ? LIMIT 1`
	var d model.Department
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Name, &d.ShortName, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// List returns departments ordered by name. When onlyActive is true,
// inactive departments are excluded (used by the public registration
// form).
func (r *DepartmentRepo) List(ctx context.Context, onlyActive bool) ([]model.Department, error) {
	q := `SELECT id, name, short_name, is_active, created_at, updated_at FROM departments`
	if onlyActive {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Department, 0)
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.ShortName, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MapAll returns every department keyed by id. The results
// aggregator uses this to attach department names to tallies.
func (r *DepartmentRepo) MapAll(ctx context.Context) (map[uint64]model.Department, error) {
	all, err := r.List(ctx, false)
	if err != nil {
		return nil, err
	}
	m := make(map[uint64]model.Department, len(all))
	for _, d := range all {
		m[d.ID] = d
	}
	return m, nil
}

// Update modifies name, short name and active flag of a department.
func (r *DepartmentRepo) Update(ctx context.Context, d model.Department) error {
	const q = `UPDATE departments SET name = ?, short_name = ?, is_active = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, d.Name, d.ShortName, d.IsActive, d.ID)
	return err
}

// Delete removes a department. Deletion is destructive: offices,
// candidates and eligibility rows referencing it are left dangling
// and readers skip unresolvable references.
func (r *DepartmentRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM departments WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
