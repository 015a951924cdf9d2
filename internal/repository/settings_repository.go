package repository

import (
	"context"
	"database/sql"

	"github.com/kolade/campus-election/internal/model"
)

// SettingsRepo manages the single election_settings row and its
// allowed-departments join table. The row is created lazily with
// safe defaults (election off, results hidden) the first time it is
// read.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo returns a new SettingsRepo bound to the given database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get loads the election settings, creating the default row when
// none exists yet. Callers load settings fresh on every gated
// operation; nothing is cached.
func (r *SettingsRepo) Get(ctx context.Context) (model.ElectionSettings, error) {
	const q = `SELECT id, is_election_active, start_date, end_date, result_visibility, updated_at FROM election_settings WHERE id = 1`
	var s model.ElectionSettings
	var start, end sql.NullTime
	err := r.db.QueryRowContext(ctx, q).Scan(&s.ID, &s.IsElectionActive, &start, &end, &s.ResultVisibility, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		if err := r.createDefault(ctx); err != nil {
			return model.ElectionSettings{}, err
		}
		err = r.db.QueryRowContext(ctx, q).Scan(&s.ID, &s.IsElectionActive, &start, &end, &s.ResultVisibility, &s.UpdatedAt)
	}
	if err != nil {
		return model.ElectionSettings{}, err
	}
	if start.Valid {
		t := start.Time
		s.StartDate = &t
	}
	if end.Valid {
		t := end.Time
		s.EndDate = &t
	}
	s.AllowedDepartmentIDs, err = r.allowedDepartments(ctx)
	if err != nil {
		return model.ElectionSettings{}, err
	}
	return s, nil
}

func (r *SettingsRepo) createDefault(ctx context.Context) error {
	const q = `INSERT INTO election_settings (id, is_election_active, result_visibility) VALUES (1, 0, ?)
	           ON DUPLICATE KEY UPDATE id = id`
	_, err := r.db.ExecContext(ctx, q, model.ResultsHidden)
	return err
}

func (r *SettingsRepo) allowedDepartments(ctx context.Context) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT department_id FROM election_allowed_departments ORDER BY department_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Update replaces the settings row and the allowed-departments set
// in one transaction, so a voter never observes a half-applied
// participation list.
func (r *SettingsRepo) Update(ctx context.Context, s model.ElectionSettings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const upd = `UPDATE election_settings SET is_election_active = ?, start_date = ?, end_date = ?, result_visibility = ? WHERE id = 1`
	var start, end any
	if s.StartDate != nil {
		start = s.StartDate.UTC()
	}
	if s.EndDate != nil {
		end = s.EndDate.UTC()
	}
	if _, err := tx.ExecContext(ctx, upd, s.IsElectionActive, start, end, s.ResultVisibility); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM election_allowed_departments`); err != nil {
		return err
	}
	for _, id := range s.AllowedDepartmentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO election_allowed_departments (department_id) VALUES (?)`, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
