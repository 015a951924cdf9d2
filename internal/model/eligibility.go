package model

import "time"

// CollegeEligibility is one row of the platform-access whitelist.
// Presence with IsActive=true is required to register and, for
// non-admin accounts, re-checked at every login so that access can
// be revoked after registration. StudentID is stored upper-case and
// Email lower-case; both are unique.
type CollegeEligibility struct {
	ID        uint64    // college_eligibility.id
	StudentID string    // college_eligibility.student_id
	Email     string    // college_eligibility.email
	FullName  string    // college_eligibility.full_name
	IsActive  bool      // college_eligibility.is_active
	CreatedAt time.Time // college_eligibility.created_at
}

// DepartmentEligibility grants the right to vote in one department's
// ballot. Unique on (student_id, department_id). A row is created
// automatically at registration for the student's own department and
// may also be managed manually by admins.
type DepartmentEligibility struct {
	ID           uint64    // department_eligibility.id
	StudentID    string    // department_eligibility.student_id
	DepartmentID uint64    // department_eligibility.department_id
	IsActive     bool      // department_eligibility.is_active
	CreatedAt    time.Time // department_eligibility.created_at
}
