// Package election contains the core decision logic of the voting
// platform: eligibility evaluation, election gating, ballot
// validation and result tabulation. The package is pure: it works
// on records loaded by callers and never touches the database, so
// every rule can be tested without infrastructure. Handlers
// translate the sentinel errors below into HTTP responses.
package election

import (
	"errors"
	"fmt"
)

// ErrNotEligible is returned when a student attempts to register
// without an active entry on the college eligibility whitelist.
var ErrNotEligible = errors.New("student is not on the college eligibility list")

// ErrAccessRevoked is returned at login when a previously registered
// student's college eligibility has been removed or deactivated.
var ErrAccessRevoked = errors.New("college eligibility has been revoked")

// ErrElectionInactive blocks both voting-data retrieval and casting
// while the election master switch is off.
var ErrElectionInactive = errors.New("election is not currently active")

// ErrDepartmentNotParticipating is returned when the voter's
// department is not in the election's allowed set.
var ErrDepartmentNotParticipating = errors.New("department is not participating in this election")

// ErrAlreadyVoted rejects a cast attempt from a user whose ballot
// has already been committed. Constraint-level duplicates detected
// by the store map to the same error.
var ErrAlreadyVoted = errors.New("ballot has already been cast")

// ErrInvalidReference is returned when a submitted office or
// candidate id does not resolve to an existing record.
var ErrInvalidReference = errors.New("invalid office or candidate")

// ErrCandidateOfficeMismatch is returned when the submitted
// candidate is attached to a different office than claimed.
var ErrCandidateOfficeMismatch = errors.New("candidate does not belong to this office")

// ErrCrossDepartmentVote is returned when a department-level office
// or candidate belongs to a department other than the voter's own.
var ErrCrossDepartmentVote = errors.New("cannot vote for positions in other departments")

// EmailMismatchError is returned by the registration check when the
// student id is whitelisted but the supplied email does not match
// the eligibility record. Expected carries the whitelisted email so
// the caller can self-correct.
type EmailMismatchError struct {
	Expected string
}

func (e *EmailMismatchError) Error() string {
	return fmt.Sprintf("email does not match eligibility record (expected %s)", e.Expected)
}
