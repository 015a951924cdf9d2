// Package queue defines message payloads exchanged over the message broker.
package queue

// BallotCastEvent is published when a voter's ballot is committed. It
// carries enough information for downstream consumers to log or feed
// analytics without querying the primary database. Candidate choices
// are intentionally excluded so the audit trail records participation
// without exposing individual votes.
type BallotCastEvent struct {
	VoterID        uint64 `json:"voter_id"`
	StudentID      string `json:"student_id"`
	DepartmentID   uint64 `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Selections     int    `json:"selections"`
	CastAt         string `json:"cast_at"`
}
