package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolade/campus-election/internal/model"
)

// ballotFixture builds the stores for a two-department election with
// one college office and one department office per department.
func ballotFixture() (map[uint64]model.Office, map[uint64]model.Candidate) {
	offices := map[uint64]model.Office{
		10: {ID: 10, Title: "President", Level: LevelCollege},
		20: {ID: 20, Title: "CS Rep", Level: LevelDepartment, DepartmentID: 1},
		30: {ID: 30, Title: "Math Rep", Level: LevelDepartment, DepartmentID: 2},
	}
	candidates := map[uint64]model.Candidate{
		100: {ID: 100, FullName: "Ada", OfficeID: 10, Level: LevelCollege},
		101: {ID: 101, FullName: "Obi", OfficeID: 10, Level: LevelCollege},
		200: {ID: 200, FullName: "Chi", OfficeID: 20, Level: LevelDepartment, DepartmentID: 1},
		300: {ID: 300, FullName: "Eze", OfficeID: 30, Level: LevelDepartment, DepartmentID: 2},
	}
	return offices, candidates
}

func activeSettings() model.ElectionSettings {
	return model.ElectionSettings{IsElectionActive: true, AllowedDepartmentIDs: []uint64{1, 2}}
}

func TestValidateBallot_FullBallot(t *testing.T) {
	offices, candidates := ballotFixture()
	voter := model.User{ID: 7, DepartmentID: 1}

	votes, err := ValidateBallot(voter, activeSettings(), []Selection{
		{OfficeID: 10, CandidateID: 101},
		{OfficeID: 20, CandidateID: 200},
	}, offices, candidates)
	require.NoError(t, err)
	require.Len(t, votes, 2)

	assert.Equal(t, uint64(7), votes[0].VoterID)
	assert.Equal(t, uint64(101), votes[0].CandidateID)
	assert.Equal(t, uint64(10), votes[0].OfficeID)
	assert.Equal(t, LevelCollege, votes[0].Level)
	assert.Zero(t, votes[0].DepartmentID)

	assert.Equal(t, LevelDepartment, votes[1].Level)
	assert.Equal(t, uint64(1), votes[1].DepartmentID)
}

func TestValidateBallot_Failures(t *testing.T) {
	offices, candidates := ballotFixture()
	voter := model.User{ID: 7, DepartmentID: 1}

	tests := []struct {
		name       string
		voter      model.User
		settings   model.ElectionSettings
		selections []Selection
		wantErr    error
	}{
		{
			"already voted",
			model.User{ID: 7, DepartmentID: 1, HasVoted: true},
			activeSettings(),
			[]Selection{{OfficeID: 10, CandidateID: 100}},
			ErrAlreadyVoted,
		},
		{
			"election inactive",
			voter,
			model.ElectionSettings{AllowedDepartmentIDs: []uint64{1}},
			[]Selection{{OfficeID: 10, CandidateID: 100}},
			ErrElectionInactive,
		},
		{
			"department not participating",
			model.User{ID: 8, DepartmentID: 3},
			activeSettings(),
			[]Selection{{OfficeID: 10, CandidateID: 100}},
			ErrDepartmentNotParticipating,
		},
		{
			"unknown office",
			voter,
			activeSettings(),
			[]Selection{{OfficeID: 99, CandidateID: 100}},
			ErrInvalidReference,
		},
		{
			"unknown candidate",
			voter,
			activeSettings(),
			[]Selection{{OfficeID: 10, CandidateID: 999}},
			ErrInvalidReference,
		},
		{
			"candidate from another office",
			voter,
			activeSettings(),
			[]Selection{{OfficeID: 10, CandidateID: 200}},
			ErrCandidateOfficeMismatch,
		},
		{
			"office of another department",
			voter,
			activeSettings(),
			[]Selection{{OfficeID: 30, CandidateID: 300}},
			ErrCrossDepartmentVote,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			votes, err := ValidateBallot(tc.voter, tc.settings, tc.selections, offices, candidates)
			assert.Equal(t, tc.wantErr, err)
			assert.Nil(t, votes)
		})
	}
}

func TestValidateBallot_CandidateDepartmentCheckedIndependently(t *testing.T) {
	// Stored data can disagree: a department candidate attached to an
	// office of the voter's department but tagged with another
	// department must still be rejected.
	offices, candidates := ballotFixture()
	candidates[201] = model.Candidate{ID: 201, FullName: "Imp", OfficeID: 20, Level: LevelDepartment, DepartmentID: 2}
	voter := model.User{ID: 7, DepartmentID: 1}

	_, err := ValidateBallot(voter, activeSettings(), []Selection{
		{OfficeID: 20, CandidateID: 201},
	}, offices, candidates)
	assert.Equal(t, ErrCrossDepartmentVote, err)
}

func TestValidateBallot_AllOrNothing(t *testing.T) {
	// One bad pair poisons the whole batch even when other pairs are
	// valid.
	offices, candidates := ballotFixture()
	voter := model.User{ID: 7, DepartmentID: 1}

	votes, err := ValidateBallot(voter, activeSettings(), []Selection{
		{OfficeID: 10, CandidateID: 100},
		{OfficeID: 20, CandidateID: 300},
	}, offices, candidates)
	assert.Equal(t, ErrCandidateOfficeMismatch, err)
	assert.Nil(t, votes)
}

func TestValidateBallot_CheckOrder(t *testing.T) {
	// The has-voted check precedes the gate, and the gate precedes
	// reference resolution.
	offices, candidates := ballotFixture()

	voted := model.User{ID: 7, DepartmentID: 1, HasVoted: true}
	_, err := ValidateBallot(voted, model.ElectionSettings{}, []Selection{{OfficeID: 99, CandidateID: 99}}, offices, candidates)
	assert.Equal(t, ErrAlreadyVoted, err)

	fresh := model.User{ID: 7, DepartmentID: 1}
	_, err = ValidateBallot(fresh, model.ElectionSettings{}, []Selection{{OfficeID: 99, CandidateID: 99}}, offices, candidates)
	assert.Equal(t, ErrElectionInactive, err)
}
