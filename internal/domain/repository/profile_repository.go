package repository

import (
	"context"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
)

// MentorProfileRepository owns the mentor-side entities of an account.
// Every Delete method has delete-if-exists semantics: deleting an entity that
// is already gone affects zero rows and returns a nil error, so cleanup
// retries are always safe.
type MentorProfileRepository interface {
	// CreateIfAbsent provisions the mentor profile skeleton. It is guarded by
	// the store's primary key (ON CONFLICT DO NOTHING), never a blind insert;
	// the bool reports whether a row was actually created.
	CreateIfAbsent(ctx context.Context, p *entity.MentorProfile) (bool, error)
	GetByUserID(ctx context.Context, userID string) (*entity.MentorProfile, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)

	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	DeleteExpertiseByUserID(ctx context.Context, userID string) (int64, error)
	DeleteContentByUserID(ctx context.Context, userID string) (int64, error)
}

// StudentProfileRepository owns the student-side entities. Same delete-if-exists
// discipline as MentorProfileRepository.
type StudentProfileRepository interface {
	CreateIfAbsent(ctx context.Context, p *entity.StudentProfile) (bool, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)

	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	DeleteSavedContentByUserID(ctx context.Context, userID string) (int64, error)
}
