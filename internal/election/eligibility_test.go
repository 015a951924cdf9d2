package election

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolade/campus-election/internal/model"
)

func TestNormalizeStudentID(t *testing.T) {
	assert.Equal(t, "CSC/2021/045", NormalizeStudentID("  csc/2021/045 "))
	assert.Equal(t, "ENG123", NormalizeStudentID("eng123"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@campus.edu", NormalizeEmail(" Ada@Campus.EDU "))
}

func TestCheckRegistration(t *testing.T) {
	active := &model.CollegeEligibility{
		StudentID: "CSC/2021/045",
		Email:     "ada@campus.edu",
		IsActive:  true,
	}
	inactive := &model.CollegeEligibility{
		StudentID: "CSC/2021/046",
		Email:     "obi@campus.edu",
		IsActive:  false,
	}

	tests := []struct {
		name    string
		rec     *model.CollegeEligibility
		email   string
		wantErr error
	}{
		{"whitelisted with matching email", active, "ada@campus.edu", nil},
		{"email match is case-insensitive", active, "Ada@Campus.EDU", nil},
		{"not on the whitelist", nil, "ada@campus.edu", ErrNotEligible},
		{"deactivated entry", inactive, "obi@campus.edu", ErrNotEligible},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckRegistration(tc.rec, tc.email)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestCheckRegistration_EmailMismatch(t *testing.T) {
	rec := &model.CollegeEligibility{
		StudentID: "CSC/2021/045",
		Email:     "ada@campus.edu",
		IsActive:  true,
	}
	err := CheckRegistration(rec, "someone.else@campus.edu")
	require.Error(t, err)

	var mismatch *EmailMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "ada@campus.edu", mismatch.Expected)
}

func TestCheckLogin(t *testing.T) {
	active := &model.CollegeEligibility{IsActive: true}
	revoked := &model.CollegeEligibility{IsActive: false}

	tests := []struct {
		name    string
		isAdmin bool
		rec     *model.CollegeEligibility
		wantErr error
	}{
		{"active student", false, active, nil},
		{"entry removed after registration", false, nil, ErrAccessRevoked},
		{"entry deactivated after registration", false, revoked, ErrAccessRevoked},
		{"admin bypasses the whitelist", true, nil, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantErr, CheckLogin(tc.isAdmin, tc.rec))
		})
	}
}

func TestCanVoteInDepartment(t *testing.T) {
	assert.True(t, CanVoteInDepartment(&model.DepartmentEligibility{IsActive: true}))
	assert.False(t, CanVoteInDepartment(&model.DepartmentEligibility{IsActive: false}))
	assert.False(t, CanVoteInDepartment(nil))
}
