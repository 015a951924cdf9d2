package election

import (
	"strings"

	"github.com/kolade/campus-election/internal/model"
)

// Ballot levels. An office, candidate or vote is either college-wide
// or scoped to one department.
const (
	LevelCollege    = "college"
	LevelDepartment = "department"
)

// NormalizeStudentID canonicalizes a student id for whitelist
// lookups: trimmed and upper-cased.
func NormalizeStudentID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeEmail canonicalizes an email address: trimmed and
// lower-cased.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckRegistration decides whether an identity may create an
// account. rec is the college eligibility row looked up by
// normalized student id, or nil when absent. The supplied email must
// case-insensitively equal the whitelisted one; on mismatch the
// returned *EmailMismatchError carries the expected address.
func CheckRegistration(rec *model.CollegeEligibility, email string) error {
	if rec == nil || !rec.IsActive {
		return ErrNotEligible
	}
	if NormalizeEmail(email) != NormalizeEmail(rec.Email) {
		return &EmailMismatchError{Expected: rec.Email}
	}
	return nil
}

// CheckLogin re-verifies platform access at every login. Admin
// accounts bypass the whitelist entirely; for everyone else the
// eligibility row must still exist and be active, which lets an
// admin revoke access after initial registration.
func CheckLogin(isAdmin bool, rec *model.CollegeEligibility) error {
	if isAdmin {
		return nil
	}
	if rec == nil || !rec.IsActive {
		return ErrAccessRevoked
	}
	return nil
}

// CanVoteInDepartment reports whether a department eligibility row
// grants ballot access. rec is the row looked up by
// (student id, department), or nil when absent.
func CanVoteInDepartment(rec *model.DepartmentEligibility) bool {
	return rec != nil && rec.IsActive
}
