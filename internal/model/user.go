package model

import "time"

// User represents a registered student (or admin) account as stored
// in the `users` table. Accounts are created at registration, which
// is gated by the college eligibility whitelist. HasVoted flips from
// false to true exactly once, by the cast operation, and is never
// mutated by any other path.
//
// Fields:
//  ID           – primary key identifier.
//  StudentID    – unique matriculation number, canonical upper-case.
//  Email        – unique email address, canonical lower-case.
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name.
//  DepartmentID – the student's own department.
//  HasVoted     – whether the user has cast their ballot.
//  VotedAt      – when the ballot was cast (nil until then).
//  IsAdmin      – grants admin console access and bypasses the login
//                 eligibility re-check.
type User struct {
	ID           uint64     // users.id
	StudentID    string     // users.student_id
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	FullName     string     // users.full_name
	DepartmentID uint64     // users.department_id
	HasVoted     bool       // users.has_voted
	VotedAt      *time.Time // users.voted_at (nullable)
	IsAdmin      bool       // users.is_admin
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}
