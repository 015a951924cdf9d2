// Package repository defines error values that are reused across
// multiple repositories. These sentinel values let handlers
// distinguish failure scenarios without parsing driver errors. The
// MySQL duplicate-key code (1062) is detected in one place so every
// unique index (emails, student ids, the (voter, office) vote
// index) surfaces as a typed error instead of a generic failure.
package repository

import (
	"errors"
	"strings"
)

// ErrUserExists is returned when registration collides with an
// existing email or student id.
var ErrUserExists = errors.New("user already exists")

// ErrOfficeExists is returned when an office with the same title,
// level and department already exists.
var ErrOfficeExists = errors.New("office already exists")

// ErrEligibilityExists is returned when a whitelist entry for the
// same student (or student/department pair) already exists.
var ErrEligibilityExists = errors.New("student already in eligibility list")

// ErrDuplicateVote is returned when the unique (voter, office) index
// rejects a vote insert. This is the authoritative double-voting
// guard: two concurrent cast attempts can both pass the has_voted
// pre-check, but only one batch insert succeeds per office. Handlers
// must present this as "already voted", not as a server error.
var ErrDuplicateVote = errors.New("vote already recorded for this office")

// isDuplicate reports whether err is a MySQL duplicate-key error.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
