package entity

import "time"

// MentorProfile is the mentor-side entity owned by exactly one user account.
// A row existing at all is what "live mentor profile" means; cleanup deletes
// the row, it never soft-hides it.
type MentorProfile struct {
	UserID    string
	Headline  string
	Expertise []string
	CreatedAt time.Time
}

// StudentProfile is the student-side counterpart.
type StudentProfile struct {
	UserID    string
	CreatedAt time.Time
}
