package election

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolade/campus-election/internal/model"
)

func tallyFixture() (map[uint64]model.Office, map[uint64]model.Candidate, map[uint64]model.Department) {
	offices := map[uint64]model.Office{
		10: {ID: 10, Title: "President", Level: LevelCollege},
		20: {ID: 20, Title: "CS Rep", Level: LevelDepartment, DepartmentID: 1},
	}
	candidates := map[uint64]model.Candidate{
		100: {ID: 100, FullName: "Ada", PhotoURL: "p1", OfficeID: 10},
		101: {ID: 101, FullName: "Obi", PhotoURL: "p2", OfficeID: 10},
		200: {ID: 200, FullName: "Chi", PhotoURL: "p3", OfficeID: 20},
	}
	departments := map[uint64]model.Department{
		1: {ID: 1, Name: "Computer Science"},
	}
	return offices, candidates, departments
}

func TestTally(t *testing.T) {
	offices, candidates, departments := tallyFixture()
	votes := []model.Vote{
		{VoterID: 1, OfficeID: 10, CandidateID: 100, Level: LevelCollege},
		{VoterID: 2, OfficeID: 10, CandidateID: 101, Level: LevelCollege},
		{VoterID: 3, OfficeID: 10, CandidateID: 101, Level: LevelCollege},
		{VoterID: 1, OfficeID: 20, CandidateID: 200, Level: LevelDepartment, DepartmentID: 1},
	}

	results := Tally(votes, offices, candidates, departments, Filter{})
	require.Len(t, results, 2)

	pres := results[0]
	assert.Equal(t, "President", pres.Office)
	assert.Equal(t, LevelCollege, pres.Level)
	require.Len(t, pres.Candidates, 2)
	assert.Equal(t, "Obi", pres.Candidates[0].Name)
	assert.Equal(t, 2, pres.Candidates[0].Votes)
	assert.Equal(t, "Ada", pres.Candidates[1].Name)
	assert.Equal(t, 1, pres.Candidates[1].Votes)

	rep := results[1]
	assert.Equal(t, uint64(1), rep.DepartmentID)
	assert.Equal(t, "Computer Science", rep.DepartmentName)
	require.Len(t, rep.Candidates, 1)
	assert.Equal(t, 1, rep.Candidates[0].Votes)
}

func TestTally_TieBreaksOnCandidateID(t *testing.T) {
	offices, candidates, departments := tallyFixture()
	votes := []model.Vote{
		{VoterID: 1, OfficeID: 10, CandidateID: 101, Level: LevelCollege},
		{VoterID: 2, OfficeID: 10, CandidateID: 100, Level: LevelCollege},
	}

	results := Tally(votes, offices, candidates, departments, Filter{})
	require.Len(t, results, 1)
	require.Len(t, results[0].Candidates, 2)
	assert.Equal(t, uint64(100), results[0].Candidates[0].CandidateID)
	assert.Equal(t, uint64(101), results[0].Candidates[1].CandidateID)
}

func TestTally_SkipsDanglingReferences(t *testing.T) {
	offices, candidates, departments := tallyFixture()
	votes := []model.Vote{
		{VoterID: 1, OfficeID: 10, CandidateID: 100, Level: LevelCollege},
		{VoterID: 2, OfficeID: 99, CandidateID: 100, Level: LevelCollege},  // office deleted
		{VoterID: 3, OfficeID: 10, CandidateID: 999, Level: LevelCollege},  // candidate deleted
	}

	results := Tally(votes, offices, candidates, departments, Filter{})
	require.Len(t, results, 1)
	require.Len(t, results[0].Candidates, 1)
	assert.Equal(t, 1, results[0].Candidates[0].Votes)
}

func TestTally_DepartmentFallsBackToVote(t *testing.T) {
	// An office whose department reference was cleared still reports
	// the department stamped on the vote.
	offices, candidates, departments := tallyFixture()
	offices[20] = model.Office{ID: 20, Title: "CS Rep", Level: LevelDepartment}
	votes := []model.Vote{
		{VoterID: 1, OfficeID: 20, CandidateID: 200, Level: LevelDepartment, DepartmentID: 1},
	}

	results := Tally(votes, offices, candidates, departments, Filter{})
	require.Len(t, results, 1)
	assert.Equal(t, uint64(1), results[0].DepartmentID)
	assert.Equal(t, "Computer Science", results[0].DepartmentName)
}

func TestTally_Filters(t *testing.T) {
	offices, candidates, departments := tallyFixture()
	votes := []model.Vote{
		{VoterID: 1, OfficeID: 10, CandidateID: 100, Level: LevelCollege},
		{VoterID: 1, OfficeID: 20, CandidateID: 200, Level: LevelDepartment, DepartmentID: 1},
	}

	collegeOnly := Tally(votes, offices, candidates, departments, Filter{Level: LevelCollege})
	require.Len(t, collegeOnly, 1)
	assert.Equal(t, "President", collegeOnly[0].Office)

	deptOnly := Tally(votes, offices, candidates, departments, Filter{DepartmentID: 1})
	require.Len(t, deptOnly, 1)
	assert.Equal(t, "CS Rep", deptOnly[0].Office)

	nothing := Tally(votes, offices, candidates, departments, Filter{DepartmentID: 42})
	assert.Empty(t, nothing)
}

func TestComputeStatistics(t *testing.T) {
	now := time.Now()
	users := []model.User{
		{ID: 1, DepartmentID: 1, HasVoted: true, VotedAt: &now},
		{ID: 2, DepartmentID: 1},
		{ID: 3, DepartmentID: 2, HasVoted: true, VotedAt: &now},
	}
	departments := map[uint64]model.Department{
		1: {ID: 1, Name: "Computer Science"},
		2: {ID: 2, Name: "Mathematics"},
	}

	stats := ComputeStatistics(users, 5, 4, 3, departments)

	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 2, stats.TotalVoters)
	assert.Equal(t, 5, stats.TotalVotes)
	assert.Equal(t, 4, stats.TotalCandidates)
	assert.Equal(t, 3, stats.TotalOffices)
	assert.InDelta(t, 66.67, stats.TurnoutPercent, 0.001)

	require.Len(t, stats.Departments, 2)
	assert.Equal(t, uint64(1), stats.Departments[0].DepartmentID)
	assert.Equal(t, 2, stats.Departments[0].Total)
	assert.Equal(t, 1, stats.Departments[0].Voted)
	assert.Equal(t, "Mathematics", stats.Departments[1].Department)
	assert.Equal(t, 1, stats.Departments[1].Voted)
}

func TestComputeStatistics_NoUsers(t *testing.T) {
	stats := ComputeStatistics(nil, 0, 0, 0, nil)
	assert.Zero(t, stats.TurnoutPercent)
	assert.Empty(t, stats.Departments)
}
