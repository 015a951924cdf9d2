package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/kolade/campus-election/internal/model"
)

// VoteRepo manages persistence for committed votes. Rows are written
// once, in a batch per voter, and never updated. The table carries a
// unique index on (voter_id, office_id).
type VoteRepo struct {
	db *sql.DB
}

// NewVoteRepo returns a new VoteRepo bound to the given database.
func NewVoteRepo(db *sql.DB) *VoteRepo { return &VoteRepo{db: db} }

// CreateBulkTx inserts all votes of one ballot in a single statement
// within the caller's transaction. A duplicate-key rejection from
// the (voter_id, office_id) index (the concurrent double-cast case)
// is returned as ErrDuplicateVote so the handler can surface it as
// "already voted". Passing an empty slice has no effect.
func (r *VoteRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, votes []model.Vote, at time.Time) error {
	if len(votes) == 0 {
		return nil
	}
	query := `INSERT INTO votes (voter_id, candidate_id, office_id, level, department_id, cast_at) VALUES `
	args := make([]any, 0, len(votes)*6)
	for i, v := range votes {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, v.VoterID, v.CandidateID, v.OfficeID, v.Level, nullableDept(v.DepartmentID), at.UTC())
	}
	_, err := tx.ExecContext(ctx, query, args...)
	if isDuplicate(err) {
		return ErrDuplicateVote
	}
	return err
}

// ReceiptRow is one line of a voter's receipt: the office voted for,
// the chosen candidate and when the ballot was committed. Office and
// candidate details are resolved at read time and degrade to empty
// strings if the referenced rows were deleted since; the receipt
// itself is immutable.
type ReceiptRow struct {
	Office         string    `json:"office"`
	Candidate      string    `json:"candidate"`
	CandidatePhoto string    `json:"candidatePhoto"`
	Level          string    `json:"level"`
	Timestamp      time.Time `json:"timestamp"`
}

// ReceiptByVoter returns the voter's receipt rows in ballot order.
func (r *VoteRepo) ReceiptByVoter(ctx context.Context, voterID uint64) ([]ReceiptRow, error) {
	const q = `SELECT COALESCE(o.title, ''), COALESCE(c.full_name, ''), COALESCE(c.photo_url, ''), v.level, v.cast_at
	           FROM votes v
	           LEFT JOIN offices o ON o.id = v.office_id
	           LEFT JOIN candidates c ON c.id = v.candidate_id
	           WHERE v.voter_id = ?
	           ORDER BY v.id`
	rows, err := r.db.QueryContext(ctx, q, voterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReceiptRow, 0)
	for rows.Next() {
		var rec ReceiptRow
		if err := rows.Scan(&rec.Office, &rec.Candidate, &rec.CandidatePhoto, &rec.Level, &rec.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListAll returns every committed vote for result tabulation.
func (r *VoteRepo) ListAll(ctx context.Context) ([]model.Vote, error) {
	const q = `SELECT id, voter_id, candidate_id, office_id, level, COALESCE(department_id, 0), cast_at FROM votes ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Vote, 0)
	for rows.Next() {
		var v model.Vote
		if err := rows.Scan(&v.ID, &v.VoterID, &v.CandidateID, &v.OfficeID, &v.Level, &v.DepartmentID, &v.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Count returns the total number of committed votes.
func (r *VoteRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes`).Scan(&n)
	return n, err
}
