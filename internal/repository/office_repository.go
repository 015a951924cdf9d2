package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kolade/campus-election/internal/model"
)

// OfficeRepo manages persistence for electable offices. A unique
// index on (title, level, department_id) prevents duplicate offices
// at the same level.
type OfficeRepo struct {
	db *sql.DB
}

// NewOfficeRepo returns a new OfficeRepo bound to the given database.
func NewOfficeRepo(db *sql.DB) *OfficeRepo { return &OfficeRepo{db: db} }

const officeColumns = `id, title, level, COALESCE(department_id, 0), is_active, sort_order, created_at, updated_at`

func scanOffice(row interface{ Scan(...any) error }) (model.Office, error) {
	var o model.Office
	err := row.Scan(&o.ID, &o.Title, &o.Level, &o.DepartmentID, &o.IsActive, &o.Order, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// nullableDept converts a zero department id to SQL NULL so the
// unique index treats college-level offices consistently.
func nullableDept(id uint64) any {
	if id == 0 {
		return nil
	}
	return id
}

// Create inserts an office. Returns ErrOfficeExists when the
// (title, level, department) combination is already taken.
func (r *OfficeRepo) Create(ctx context.Context, o *model.Office) error {
	const q = `INSERT INTO offices (title, level, department_id, is_active, sort_order) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, o.Title, o.Level, nullableDept(o.DepartmentID), o.IsActive, o.Order)
	if err != nil {
		if isDuplicate(err) {
			return ErrOfficeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// GetByID fetches one office. Returns sql.ErrNoRows when absent.
func (r *OfficeRepo) GetByID(ctx context.Context, id uint64) (model.Office, error) {
	return scanOffice(r.db.QueryRowContext(ctx,
		`SELECT `+officeColumns+` FROM offices WHERE id = ? LIMIT 1`, id))
}

// List returns all offices ordered for display.
func (r *OfficeRepo) List(ctx context.Context) ([]model.Office, error) {
	return r.query(ctx, `SELECT `+officeColumns+` FROM offices ORDER BY sort_order, id`)
}

// ListActiveCollege returns active college-level offices in ballot
// order. Every participating voter sees these.
func (r *OfficeRepo) ListActiveCollege(ctx context.Context) ([]model.Office, error) {
	return r.query(ctx,
		`SELECT `+officeColumns+` FROM offices WHERE level = 'college' AND is_active = 1 ORDER BY sort_order, id`)
}

// ListActiveByDepartment returns active department-level offices for
// one department in ballot order. Exposed only to voters on that
// department's eligibility list.
func (r *OfficeRepo) ListActiveByDepartment(ctx context.Context, departmentID uint64) ([]model.Office, error) {
	return r.query(ctx,
		`SELECT `+officeColumns+` FROM offices WHERE level = 'department' AND department_id = ? AND is_active = 1 ORDER BY sort_order, id`,
		departmentID)
}

// MapByIDs loads the offices with the given ids keyed by id. Missing
// ids are simply absent from the map; the ballot validator treats
// that as an invalid reference.
func (r *OfficeRepo) MapByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Office, error) {
	if len(ids) == 0 {
		return map[uint64]model.Office{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	offices, err := r.query(ctx, `SELECT `+officeColumns+` FROM offices WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	m := make(map[uint64]model.Office, len(offices))
	for _, o := range offices {
		m[o.ID] = o
	}
	return m, nil
}

// MapAll returns every office keyed by id, for result tabulation.
func (r *OfficeRepo) MapAll(ctx context.Context) (map[uint64]model.Office, error) {
	offices, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[uint64]model.Office, len(offices))
	for _, o := range offices {
		m[o.ID] = o
	}
	return m, nil
}

// CountActive returns the number of active offices, for statistics.
func (r *OfficeRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offices WHERE is_active = 1`).Scan(&n)
	return n, err
}

// Update modifies an office. Returns ErrOfficeExists on a uniqueness
// collision.
func (r *OfficeRepo) Update(ctx context.Context, o model.Office) error {
	const q = `UPDATE offices SET title = ?, level = ?, department_id = ?, is_active = ?, sort_order = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, o.Title, o.Level, nullableDept(o.DepartmentID), o.IsActive, o.Order, o.ID)
	if isDuplicate(err) {
		return ErrOfficeExists
	}
	return err
}

// Delete removes an office. Votes and candidates referencing it are
// left dangling; the results aggregator skips them.
func (r *OfficeRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM offices WHERE id = ?`, id)
	return err
}

func (r *OfficeRepo) query(ctx context.Context, q string, args ...any) ([]model.Office, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Office, 0)
	for rows.Next() {
		o, err := scanOffice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
