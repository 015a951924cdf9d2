package model

import "time"

// Candidate is a person running for an office. Level and department
// must agree with the referenced office; this is validated both when
// an admin creates the candidate and again defensively at vote time.
//
// Fields:
//  ID           – primary key identifier.
//  FullName     – candidate's display name.
//  PhotoURL     – portrait URL (placeholder generated when absent).
//  OfficeID     – office the candidate runs for.
//  Level        – "college" or "department", mirrors the office.
//  DepartmentID – department scope when Level is "department"; zero otherwise.
//  Manifesto    – optional free-text manifesto.
//  IsActive     – whether the candidate appears on ballots.
type Candidate struct {
	ID           uint64    // candidates.id
	FullName     string    // candidates.full_name
	PhotoURL     string    // candidates.photo_url
	OfficeID     uint64    // candidates.office_id
	Level        string    // candidates.level
	DepartmentID uint64    // candidates.department_id (0 when college level)
	Manifesto    string    // candidates.manifesto
	IsActive     bool      // candidates.is_active
	CreatedAt    time.Time // candidates.created_at
	UpdatedAt    time.Time // candidates.updated_at
}
