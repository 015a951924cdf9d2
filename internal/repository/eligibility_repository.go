package repository

import (
	"context"
	"database/sql"

	"github.com/kolade/campus-election/internal/election"
	"github.com/kolade/campus-election/internal/model"
)

// EligibilityRepo manages both tiers of the eligibility whitelist:
// the college list that gates platform access and the per-department
// lists that gate department ballots. Student ids are stored
// upper-case and emails lower-case; lookups normalize their inputs
// the same way.
type EligibilityRepo struct {
	db *sql.DB
}

// NewEligibilityRepo returns a new EligibilityRepo bound to the given database.
func NewEligibilityRepo(db *sql.DB) *EligibilityRepo { return &EligibilityRepo{db: db} }

// ----- college tier -----

// CollegeByStudentID looks up a college whitelist row by normalized
// student id. Returns (nil, nil) when absent so callers can hand the
// pointer straight to the eligibility checks.
func (r *EligibilityRepo) CollegeByStudentID(ctx context.Context, studentID string) (*model.CollegeEligibility, error) {
	const q = `SELECT id, student_id, email, full_name, is_active, created_at FROM college_eligibility WHERE student_id = ? LIMIT 1`
	var rec model.CollegeEligibility
	err := r.db.QueryRowContext(ctx, q, election.NormalizeStudentID(studentID)).Scan(
		&rec.ID, &rec.StudentID, &rec.Email, &rec.FullName, &rec.IsActive, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListCollege returns the full college whitelist, newest first.
func (r *EligibilityRepo) ListCollege(ctx context.Context) ([]model.CollegeEligibility, error) {
	const q = `SELECT id, student_id, email, full_name, is_active, created_at FROM college_eligibility ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CollegeEligibility, 0)
	for rows.Next() {
		var rec model.CollegeEligibility
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Email, &rec.FullName, &rec.IsActive, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AddCollege inserts one college whitelist entry. Returns
// ErrEligibilityExists when the student id or email is already listed.
func (r *EligibilityRepo) AddCollege(ctx context.Context, studentID, email, fullName string) error {
	const q = `INSERT INTO college_eligibility (student_id, email, full_name, is_active) VALUES (?, ?, ?, 1)`
	_, err := r.db.ExecContext(ctx, q,
		election.NormalizeStudentID(studentID), election.NormalizeEmail(email), fullName)
	if isDuplicate(err) {
		return ErrEligibilityExists
	}
	return err
}

// BulkAddCollege inserts many college whitelist entries, skipping
// rows that collide with existing student ids or emails (bulk upload
// is not all-or-nothing). Returns the number of rows inserted.
func (r *EligibilityRepo) BulkAddCollege(ctx context.Context, entries []model.CollegeEligibility) (int, error) {
	count := 0
	for _, e := range entries {
		err := r.AddCollege(ctx, e.StudentID, e.Email, e.FullName)
		if err == ErrEligibilityExists {
			continue
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// RemoveCollegeByStudentID deletes a college whitelist entry. The
// next login by that student fails the eligibility re-check.
func (r *EligibilityRepo) RemoveCollegeByStudentID(ctx context.Context, studentID string) error {
	const q = `DELETE FROM college_eligibility WHERE student_id = ?`
	_, err := r.db.ExecContext(ctx, q, election.NormalizeStudentID(studentID))
	return err
}

// ----- department tier -----

// DepartmentFor looks up a department ballot grant for one student
// in one department. Returns (nil, nil) when absent.
func (r *EligibilityRepo) DepartmentFor(ctx context.Context, studentID string, departmentID uint64) (*model.DepartmentEligibility, error) {
	const q = `SELECT id, student_id, department_id, is_active, created_at FROM department_eligibility WHERE student_id = ? AND department_id = ? LIMIT 1`
	var rec model.DepartmentEligibility
	err := r.db.QueryRowContext(ctx, q, election.NormalizeStudentID(studentID), departmentID).Scan(
		&rec.ID, &rec.StudentID, &rec.DepartmentID, &rec.IsActive, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// EnsureDepartment creates a department ballot grant if one does not
// already exist: an existence check followed by an insert rather
// than an upsert, so the registration side effect stays idempotent
// without touching rows an admin may have deactivated.
func (r *EligibilityRepo) EnsureDepartment(ctx context.Context, studentID string, departmentID uint64) error {
	existing, err := r.DepartmentFor(ctx, studentID, departmentID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	err = r.AddDepartment(ctx, studentID, departmentID)
	if err == ErrEligibilityExists {
		// concurrent registration created it first
		return nil
	}
	return err
}

// AddDepartment inserts one department ballot grant. Returns
// ErrEligibilityExists when the (student, department) pair is
// already listed.
func (r *EligibilityRepo) AddDepartment(ctx context.Context, studentID string, departmentID uint64) error {
	const q = `INSERT INTO department_eligibility (student_id, department_id, is_active) VALUES (?, ?, 1)`
	_, err := r.db.ExecContext(ctx, q, election.NormalizeStudentID(studentID), departmentID)
	if isDuplicate(err) {
		return ErrEligibilityExists
	}
	return err
}

// BulkAddDepartment inserts many grants for one department, skipping
// duplicates. Returns the number of rows inserted.
func (r *EligibilityRepo) BulkAddDepartment(ctx context.Context, studentIDs []string, departmentID uint64) (int, error) {
	count := 0
	for _, sid := range studentIDs {
		err := r.AddDepartment(ctx, sid, departmentID)
		if err == ErrEligibilityExists {
			continue
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ListDepartment returns department grants, optionally filtered to
// one department (departmentID 0 means all), newest first.
func (r *EligibilityRepo) ListDepartment(ctx context.Context, departmentID uint64) ([]model.DepartmentEligibility, error) {
	q := `SELECT id, student_id, department_id, is_active, created_at FROM department_eligibility`
	args := []any{}
	if departmentID != 0 {
		q += ` WHERE department_id = ?`
		args = append(args, departmentID)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.DepartmentEligibility, 0)
	for rows.Next() {
		var rec model.DepartmentEligibility
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.DepartmentID, &rec.IsActive, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RemoveDepartmentByID deletes one department grant by row id.
func (r *EligibilityRepo) RemoveDepartmentByID(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM department_eligibility WHERE id = ?`, id)
	return err
}
