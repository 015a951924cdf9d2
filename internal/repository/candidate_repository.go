package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kolade/campus-election/internal/model"
)

// CandidateRepo manages persistence for candidates.
type CandidateRepo struct {
	db *sql.DB
}

// NewCandidateRepo returns a new CandidateRepo bound to the given database.
func NewCandidateRepo(db *sql.DB) *CandidateRepo { return &CandidateRepo{db: db} }

const candidateColumns = `id, full_name, photo_url, office_id, level, COALESCE(department_id, 0), COALESCE(manifesto, ''), is_active, created_at, updated_at`

func scanCandidate(row interface{ Scan(...any) error }) (model.Candidate, error) {
	var c model.Candidate
	err := row.Scan(&c.ID, &c.FullName, &c.PhotoURL, &c.OfficeID, &c.Level, &c.DepartmentID,
		&c.Manifesto, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a candidate and populates the generated ID.
func (r *CandidateRepo) Create(ctx context.Context, c *model.Candidate) error {
	const q = `INSERT INTO candidates (full_name, photo_url, office_id, level, department_id, manifesto, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.FullName, c.PhotoURL, c.OfficeID, c.Level,
		nullableDept(c.DepartmentID), c.Manifesto, c.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches one candidate. Returns sql.ErrNoRows when absent.
func (r *CandidateRepo) GetByID(ctx context.Context, id uint64) (model.Candidate, error) {
	return scanCandidate(r.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = ? LIMIT 1`, id))
}

// List returns all candidates for the admin console.
func (r *CandidateRepo) List(ctx context.Context) ([]model.Candidate, error) {
	return r.query(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY office_id, id`)
}

// ListActiveForOffices returns active candidates attached to any of
// the given offices. Used by the voting-data read path after the
// visible offices have been determined.
func (r *CandidateRepo) ListActiveForOffices(ctx context.Context, officeIDs []uint64) ([]model.Candidate, error) {
	if len(officeIDs) == 0 {
		return []model.Candidate{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(officeIDs)), ",")
	args := make([]any, 0, len(officeIDs))
	for _, id := range officeIDs {
		args = append(args, id)
	}
	return r.query(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE is_active = 1 AND office_id IN (`+placeholders+`) ORDER BY office_id, id`,
		args...)
}

// MapByIDs loads the candidates with the given ids keyed by id.
// Missing ids are absent from the map.
func (r *CandidateRepo) MapByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Candidate, error) {
	if len(ids) == 0 {
		return map[uint64]model.Candidate{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	candidates, err := r.query(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	m := make(map[uint64]model.Candidate, len(candidates))
	for _, c := range candidates {
		m[c.ID] = c
	}
	return m, nil
}

// MapAll returns every candidate keyed by id, for result tabulation.
func (r *CandidateRepo) MapAll(ctx context.Context) (map[uint64]model.Candidate, error) {
	candidates, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[uint64]model.Candidate, len(candidates))
	for _, c := range candidates {
		m[c.ID] = c
	}
	return m, nil
}

// CountActive returns the number of active candidates, for statistics.
func (r *CandidateRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidates WHERE is_active = 1`).Scan(&n)
	return n, err
}

// Update modifies a candidate.
func (r *CandidateRepo) Update(ctx context.Context, c model.Candidate) error {
	const q = `UPDATE candidates SET full_name = ?, photo_url = ?, office_id = ?, level = ?, department_id = ?, manifesto = ?, is_active = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, c.FullName, c.PhotoURL, c.OfficeID, c.Level,
		nullableDept(c.DepartmentID), c.Manifesto, c.IsActive, c.ID)
	return err
}

// Delete removes a candidate. Votes referencing it are left
// dangling; the results aggregator skips them.
func (r *CandidateRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = ?`, id)
	return err
}

func (r *CandidateRepo) query(ctx context.Context, q string, args ...any) ([]model.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
