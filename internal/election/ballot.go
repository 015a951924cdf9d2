package election

import "github.com/kolade/campus-election/internal/model"

// Selection is one proposed (office, candidate) pair from a cast
// request.
type Selection struct {
	OfficeID    uint64 `json:"officeId"`
	CandidateID uint64 `json:"candidateId"`
}

// ValidateBallot validates a batch of proposed selections for the
// given voter and, when every pair passes, returns the vote records
// to persist. Checks run in order and the first failure wins:
//
//  1. the voter must not have voted already
//  2. the election gate must pass for the voter's department
//  3. office and candidate ids must resolve
//  4. the candidate must belong to the claimed office
//  5. a department-level office must belong to the voter's department
//  6. a department-level candidate must belong to the voter's
//     department (checked independently of 5; nothing guarantees
//     office and candidate agree in stored data)
//
// No vote is emitted unless the whole batch is valid; the caller
// commits all returned records in a single transaction. Level and
// department are stamped from the office, so a vote row stays
// interpretable even if the office is later deleted.
func ValidateBallot(
	voter model.User,
	settings model.ElectionSettings,
	selections []Selection,
	offices map[uint64]model.Office,
	candidates map[uint64]model.Candidate,
) ([]model.Vote, error) {
	if voter.HasVoted {
		return nil, ErrAlreadyVoted
	}
	if err := CheckGate(settings, voter.DepartmentID); err != nil {
		return nil, err
	}

	votes := make([]model.Vote, 0, len(selections))
	for _, sel := range selections {
		office, okO := offices[sel.OfficeID]
		candidate, okC := candidates[sel.CandidateID]
		if !okO || !okC {
			return nil, ErrInvalidReference
		}
		if candidate.OfficeID != office.ID {
			return nil, ErrCandidateOfficeMismatch
		}
		if office.Level == LevelDepartment && office.DepartmentID != voter.DepartmentID {
			return nil, ErrCrossDepartmentVote
		}
		if candidate.Level == LevelDepartment && candidate.DepartmentID != voter.DepartmentID {
			return nil, ErrCrossDepartmentVote
		}

		vote := model.Vote{
			VoterID:     voter.ID,
			CandidateID: candidate.ID,
			OfficeID:    office.ID,
			Level:       office.Level,
		}
		if office.Level == LevelDepartment {
			vote.DepartmentID = office.DepartmentID
		}
		votes = append(votes, vote)
	}
	return votes, nil
}
