package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kolade/campus-election/internal/election"
	"github.com/kolade/campus-election/internal/model"
	"github.com/kolade/campus-election/internal/utils"
)

// UserRepo manages persistence for user accounts.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying sql.DB so handlers can begin
// transactions spanning multiple repositories (the cast operation
// commits votes and the has_voted flip atomically).
func (r *UserRepo) DB() *sql.DB { return r.db }

const userColumns = `id, student_id, email, password_hash, full_name, department_id, has_voted, voted_at, is_admin, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var votedAt sql.NullTime
	err := row.Scan(&u.ID, &u.StudentID, &u.Email, &u.PasswordHash, &u.FullName,
		&u.DepartmentID, &u.HasVoted, &votedAt, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if votedAt.Valid {
		t := votedAt.Time
		u.VotedAt = &t
	}
	return u, err
}

// Create inserts a user with a freshly hashed password and returns
// its ID. Student id and email are normalized before storage.
// Returns ErrUserExists when either unique column collides.
func (r *UserRepo) Create(ctx context.Context, studentID, email, password, fullName string, departmentID uint64, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	const q = `INSERT INTO users (student_id, email, password_hash, full_name, department_id) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		election.NormalizeStudentID(studentID), election.NormalizeEmail(email), hash, fullName, departmentID)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, election.NormalizeEmail(email)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
}

// MarkVotedTx flips has_voted and stamps voted_at inside the cast
// transaction, so the flag lands with the vote rows or not at all.
func (r *UserRepo) MarkVotedTx(ctx context.Context, tx *sql.Tx, userID uint64, at time.Time) error {
	const q = `UPDATE users SET has_voted = 1, voted_at = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, at.UTC(), userID)
	return err
}

// ListAll returns all users. Statistics groups them by department.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
