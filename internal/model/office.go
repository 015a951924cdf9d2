package model

import "time"

// Office is an electable position on the ballot, either college-wide
// or scoped to a single department. The combination of title, level
// and department is unique. DepartmentID is zero for college-level
// offices.
//
// Fields:
//  ID           – primary key identifier.
//  Title        – position name (e.g. "President").
//  Level        – "college" or "department".
//  DepartmentID – owning department when Level is "department"; zero otherwise.
//  IsActive     – whether the office appears on ballots.
//  Order        – display ordering on the ballot, ascending.
type Office struct {
	ID           uint64    // offices.id
	Title        string    // offices.title
	Level        string    // offices.level
	DepartmentID uint64    // offices.department_id (0 when college level)
	IsActive     bool      // offices.is_active
	Order        int       // offices.sort_order
	CreatedAt    time.Time // offices.created_at
	UpdatedAt    time.Time // offices.updated_at
}
