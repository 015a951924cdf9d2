package election

import "github.com/kolade/campus-election/internal/model"

// DepartmentAllowed reports whether a department participates in the
// election described by the settings.
func DepartmentAllowed(s model.ElectionSettings, departmentID uint64) bool {
	for _, id := range s.AllowedDepartmentIDs {
		if id == departmentID {
			return true
		}
	}
	return false
}

// CheckGate decides whether voting operations are permitted right
// now for a user in the given department. Settings are passed in
// explicitly; callers load them fresh on every fetch and cast so
// administrative changes take effect between a user loading the
// ballot and submitting it. The gate runs independently of
// department-ballot eligibility: a student in a participating
// department without a department eligibility row still passes and
// sees only the college-level ballot.
func CheckGate(s model.ElectionSettings, departmentID uint64) error {
	if !s.IsElectionActive {
		return ErrElectionInactive
	}
	if !DepartmentAllowed(s, departmentID) {
		return ErrDepartmentNotParticipating
	}
	return nil
}

// ResultsVisible applies the result visibility policy. Admins always
// see results; everyone else depends on the configured mode:
// "live" exposes results at any time, "post-election" only once the
// election is switched off, and "hidden" never.
func ResultsVisible(s model.ElectionSettings, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	switch s.ResultVisibility {
	case model.ResultsLive:
		return true
	case model.ResultsPostElection:
		return !s.IsElectionActive
	default:
		return false
	}
}
