package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	id, email, password_hash, name, role, role_selection_completed, is_reviewer,
	created_at, updated_at
`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, role, role_selection_completed, is_reviewer, created_at, updated_at
	`, u.Email, u.Password, u.Name)

	if err := row.Scan(&u.ID, &u.Role, &u.RoleSelectionCompleted, &u.IsReviewer,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateConflict
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

// LockRole is the one-time role commitment. The WHERE clause on
// role_selection_completed makes concurrent selections race safely: only one
// can ever flip the flag.
func (r *UserRepository) LockRole(ctx context.Context, userID string, role entity.Role) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET role = $2, role_selection_completed = TRUE, updated_at = now()
		WHERE id = $1 AND role_selection_completed = FALSE
	`, userID, role)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role,
		&u.RoleSelectionCompleted, &u.IsReviewer, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
