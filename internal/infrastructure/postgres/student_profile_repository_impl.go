package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/repository"
)

type StudentProfileRepository struct {
	pool *pgxpool.Pool
}

func NewStudentProfileRepository(pool *pgxpool.Pool) *StudentProfileRepository {
	return &StudentProfileRepository{pool: pool}
}

func (r *StudentProfileRepository) CreateIfAbsent(ctx context.Context, p *entity.StudentProfile) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		INSERT INTO student_profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, p.UserID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *StudentProfileRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM student_profiles WHERE user_id = $1)
	`, userID).Scan(&exists)
	return exists, err
}

func (r *StudentProfileRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM student_profiles WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *StudentProfileRepository) DeleteSavedContentByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM student_saved_content WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.StudentProfileRepository = (*StudentProfileRepository)(nil)
