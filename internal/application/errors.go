package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")

	// ErrInvalidTargetStatus rejects transitions that skip pending or aim at
	// a status outside the state machine.
	ErrInvalidTargetStatus = errors.New("invalid target status")

	// ErrAlreadyMentor blocks approval of an applicant whose account already
	// carries a mentor role or a live mentor profile.
	ErrAlreadyMentor = errors.New("applicant is already a mentor")

	ErrInvalidRole = errors.New("invalid role")

	// ErrRoleAlreadyLocked: role selection is a one-time, irrevocable
	// decision; there is no overwrite path.
	ErrRoleAlreadyLocked = errors.New("role selection already completed")

	// ErrRoleVerificationFailed: the read-back after locking did not match
	// the requested role, which indicates a conflicting concurrent write.
	ErrRoleVerificationFailed = errors.New("persisted role does not match requested role")
)

// ValidationError lists every missing or unacceptable required intake field.
// It is returned to the immediate caller and never aborts a whole batch.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// DuplicateApplicationError reports an existing non-rejected application for
// the same email. The existing record is never overwritten.
type DuplicateApplicationError struct {
	ExistingID string
	Status     entity.ApplicationStatus
}

func (e *DuplicateApplicationError) Error() string {
	return fmt.Sprintf("application already exists (id=%s, status=%s)", e.ExistingID, e.Status)
}
