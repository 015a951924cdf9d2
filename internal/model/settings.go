package model

import "time"

// Result visibility policies for ElectionSettings.
const (
	ResultsHidden       = "hidden"        // results visible to admins only
	ResultsLive         = "live"          // results visible to everyone while voting runs
	ResultsPostElection = "post-election" // results visible to everyone once voting closes
)

// ElectionSettings is the single administrative record controlling
// the election. It is stored as one row and loaded fresh on every
// vote-data fetch and cast attempt; handlers pass the loaded value
// into the election gate explicitly rather than sharing mutable
// state.
//
// Fields:
//  IsElectionActive     – master switch for all voting operations.
//  StartDate, EndDate   – informational schedule bounds (nullable).
//  AllowedDepartmentIDs – departments participating in this election.
//  ResultVisibility     – one of ResultsHidden, ResultsLive, ResultsPostElection.
type ElectionSettings struct {
	ID                   uint64     // election_settings.id (always 1)
	IsElectionActive     bool       // election_settings.is_election_active
	StartDate            *time.Time // election_settings.start_date (nullable)
	EndDate              *time.Time // election_settings.end_date (nullable)
	AllowedDepartmentIDs []uint64   // election_allowed_departments.department_id
	ResultVisibility     string     // election_settings.result_visibility
	UpdatedAt            time.Time  // election_settings.updated_at
}
