package election

import (
	"math"
	"sort"

	"github.com/kolade/campus-election/internal/model"
)

// Filter narrows a tally to one ballot level and/or one department.
// Zero values mean "no filter".
type Filter struct {
	Level        string
	DepartmentID uint64
}

// CandidateTally is one ranked entry in an office result.
type CandidateTally struct {
	CandidateID uint64 `json:"candidateId"`
	Name        string `json:"name"`
	Photo       string `json:"photo"`
	Votes       int    `json:"votes"`
}

// OfficeResult is the per-office tally emitted by Tally. DepartmentID
// and DepartmentName are populated for department-level offices only.
type OfficeResult struct {
	OfficeID       uint64           `json:"officeId"`
	Office         string           `json:"office"`
	Level          string           `json:"level"`
	DepartmentID   uint64           `json:"departmentId,omitempty"`
	DepartmentName string           `json:"departmentName,omitempty"`
	Candidates     []CandidateTally `json:"candidates"`
}

// Tally groups committed votes by office and ranks each office's
// candidates by vote count descending; ties break on candidate id
// ascending so output is deterministic. Votes whose office or
// candidate no longer resolves are skipped: deletions are
// destructive and the aggregation must tolerate dangling references
// rather than fail. For department-level offices the department is
// sourced from the office, falling back to the department stamped on
// the vote itself when the office's is unavailable. Offices appear
// in the order their first vote was encountered.
func Tally(
	votes []model.Vote,
	offices map[uint64]model.Office,
	candidates map[uint64]model.Candidate,
	departments map[uint64]model.Department,
	f Filter,
) []OfficeResult {
	order := make([]uint64, 0)
	grouped := make(map[uint64]*OfficeResult)
	counts := make(map[uint64]map[uint64]int) // officeID -> candidateID -> votes

	for _, v := range votes {
		if f.Level != "" && v.Level != f.Level {
			continue
		}
		if f.DepartmentID != 0 && v.DepartmentID != f.DepartmentID {
			continue
		}
		office, okO := offices[v.OfficeID]
		candidate, okC := candidates[v.CandidateID]
		if !okO || !okC {
			continue
		}

		res, ok := grouped[office.ID]
		if !ok {
			res = &OfficeResult{
				OfficeID: office.ID,
				Office:   office.Title,
				Level:    office.Level,
			}
			if office.Level == LevelDepartment {
				deptID := office.DepartmentID
				if deptID == 0 {
					deptID = v.DepartmentID
				}
				res.DepartmentID = deptID
				if dept, ok := departments[deptID]; ok {
					res.DepartmentName = dept.Name
				}
			}
			grouped[office.ID] = res
			counts[office.ID] = make(map[uint64]int)
			order = append(order, office.ID)
		}
		counts[office.ID][candidate.ID]++
	}

	results := make([]OfficeResult, 0, len(order))
	for _, officeID := range order {
		res := grouped[officeID]
		for candidateID, n := range counts[officeID] {
			c := candidates[candidateID]
			res.Candidates = append(res.Candidates, CandidateTally{
				CandidateID: candidateID,
				Name:        c.FullName,
				Photo:       c.PhotoURL,
				Votes:       n,
			})
		}
		sort.Slice(res.Candidates, func(i, j int) bool {
			if res.Candidates[i].Votes != res.Candidates[j].Votes {
				return res.Candidates[i].Votes > res.Candidates[j].Votes
			}
			return res.Candidates[i].CandidateID < res.Candidates[j].CandidateID
		})
		results = append(results, *res)
	}
	return results
}

// DepartmentTurnout is one row of the per-department breakdown.
type DepartmentTurnout struct {
	DepartmentID uint64 `json:"departmentId"`
	Department   string `json:"department"`
	Total        int    `json:"total"`
	Voted        int    `json:"voted"`
}

// Statistics is the derived turnout overview.
type Statistics struct {
	TotalUsers      int                 `json:"totalUsers"`
	TotalVoters     int                 `json:"totalVoters"`
	TotalVotes      int                 `json:"totalVotes"`
	TotalCandidates int                 `json:"totalCandidates"`
	TotalOffices    int                 `json:"totalOffices"`
	TurnoutPercent  float64             `json:"turnoutPercentage"`
	Departments     []DepartmentTurnout `json:"departmentStats"`
}

// ComputeStatistics derives turnout figures from the registered
// users. Turnout is voters/users*100 rounded to two decimals; the
// department breakdown is ordered by department id for stable
// output. Departments that no longer resolve keep their id with an
// empty name.
func ComputeStatistics(
	users []model.User,
	totalVotes, totalCandidates, totalOffices int,
	departments map[uint64]model.Department,
) Statistics {
	stats := Statistics{
		TotalUsers:      len(users),
		TotalVotes:      totalVotes,
		TotalCandidates: totalCandidates,
		TotalOffices:    totalOffices,
	}

	perDept := make(map[uint64]*DepartmentTurnout)
	deptOrder := make([]uint64, 0)
	for _, u := range users {
		if u.HasVoted {
			stats.TotalVoters++
		}
		row, ok := perDept[u.DepartmentID]
		if !ok {
			row = &DepartmentTurnout{DepartmentID: u.DepartmentID}
			if dept, found := departments[u.DepartmentID]; found {
				row.Department = dept.Name
			}
			perDept[u.DepartmentID] = row
			deptOrder = append(deptOrder, u.DepartmentID)
		}
		row.Total++
		if u.HasVoted {
			row.Voted++
		}
	}

	sort.Slice(deptOrder, func(i, j int) bool { return deptOrder[i] < deptOrder[j] })
	stats.Departments = make([]DepartmentTurnout, 0, len(deptOrder))
	for _, id := range deptOrder {
		stats.Departments = append(stats.Departments, *perDept[id])
	}

	if stats.TotalUsers > 0 {
		pct := float64(stats.TotalVoters) / float64(stats.TotalUsers) * 100
		stats.TurnoutPercent = math.Round(pct*100) / 100
	}
	return stats
}
