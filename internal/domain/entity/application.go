package entity

import (
	"strings"
	"time"
)

// ApplicationStatus is the review state of a mentor application.
// pending is the only non-terminal state; approved and rejected are terminal.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// Terminal reports whether the status can never change again.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Note is one append-only review annotation on an application.
type Note struct {
	At   time.Time `json:"at"`
	By   string    `json:"by"`
	Text string    `json:"text"`
}

// Application is the canonical, auditable record of one mentor-application
// submission. Rows are never deleted; rejected applicants may re-apply with a
// fresh row while the old one stays as audit trail.
type Application struct {
	ID                string
	Email             string // normalized: lower-cased, trimmed
	FullName          string
	Institution       string
	GraduationYear    int
	Expertise         []string // canonical slugs
	Motivation        string
	AgeConfirmed      bool
	AgreementAccepted bool
	DocumentURL       string
	Status            ApplicationStatus
	SubmittedAt       time.Time
	ReviewedAt        *time.Time
	ReviewedBy        *string
	Notes             []Note
}

// NormalizeEmail produces the business key used for deduplication and for
// cross-referencing applications to user accounts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
