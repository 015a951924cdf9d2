package model

import "time"

// Department represents an academic department as stored in the
// `departments` table. Departments are referenced by offices,
// candidates, users and eligibility records. Deleting a department
// is destructive; dependent rows are not cleaned up and readers
// must tolerate dangling references.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique full department name.
//  ShortName – abbreviation shown in listings (e.g. "CSC").
//  IsActive  – whether the department is selectable.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Department struct {
	ID        uint64    // departments.id
	Name      string    // departments.name
	ShortName string    // departments.short_name
	IsActive  bool      // departments.is_active
	CreatedAt time.Time // departments.created_at
	UpdatedAt time.Time // departments.updated_at
}
