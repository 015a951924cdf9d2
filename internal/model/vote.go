package model

import "time"

// Vote is a single committed ballot entry. Rows are created only by
// the cast operation, in one batch per voter, and never updated or
// deleted in normal operation. The unique index on
// (voter_id, office_id) is the authoritative guard against double
// voting, including under concurrent cast attempts.
//
// Fields:
//  ID           – primary key identifier.
//  VoterID      – user who cast the vote.
//  CandidateID  – chosen candidate.
//  OfficeID     – office the vote belongs to.
//  Level        – "college" or "department", copied from the office.
//  DepartmentID – office's department for department-level votes; zero otherwise.
//  Timestamp    – when the ballot was committed.
type Vote struct {
	ID           uint64    // votes.id
	VoterID      uint64    // votes.voter_id
	CandidateID  uint64    // votes.candidate_id
	OfficeID     uint64    // votes.office_id
	Level        string    // votes.level
	DepartmentID uint64    // votes.department_id (0 when college level)
	Timestamp    time.Time // votes.cast_at
}
