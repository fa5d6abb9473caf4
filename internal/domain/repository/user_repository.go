package repository

import (
	"context"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
)

// UserRepository defines the interface for user-account store operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// LockRole atomically sets role and role_selection_completed in a single
	// conditional update guarded by role_selection_completed = false. A false
	// return means the account was already locked, possibly concurrently.
	LockRole(ctx context.Context, userID string, role entity.Role) (bool, error)
}
