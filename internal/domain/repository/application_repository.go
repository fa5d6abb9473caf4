package repository

import (
	"context"
	"time"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
)

// ProvisioningCandidate is an approved application whose mentor profile is
// still missing, joined to the user account it should attach to.
type ProvisioningCandidate struct {
	ApplicationID string
	Email         string
	UserID        string
}

// ApplicationRepository defines the store contract the application workflow
// depends on. All mutations of status are conditional writes; there is no
// blind overwrite path.
type ApplicationRepository interface {
	// Insert creates a new application row. The store's partial unique index
	// on (email) where status is not rejected is the final arbiter against
	// concurrent duplicates; a violation is returned as ErrDuplicateConflict.
	Insert(ctx context.Context, a *entity.Application) error

	GetByID(ctx context.Context, id string) (*entity.Application, error)

	// LatestByEmail returns the most recently submitted application for the
	// normalized email, or ErrNotFound.
	LatestByEmail(ctx context.Context, email string) (*entity.Application, error)

	// TransitionFromPending performs the single atomic conditional update
	// "SET status, reviewed_at, reviewed_by WHERE status = 'pending'".
	// It returns false with a nil error when zero rows were affected, which
	// callers treat as the idempotent no-op case.
	TransitionFromPending(ctx context.Context, id string, target entity.ApplicationStatus, reviewedBy *string, at time.Time) (bool, error)

	// AppendNote appends one annotation to the append-only notes log.
	AppendNote(ctx context.Context, id string, n entity.Note) error

	SetDocumentURL(ctx context.Context, id string, url string) error

	// ApprovedAwaitingProvisioning lists approved applications that have a
	// matching user account but no live mentor profile yet.
	ApprovedAwaitingProvisioning(ctx context.Context, limit int) ([]ProvisioningCandidate, error)
}
