package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/repository"
)

type MentorProfileRepository struct {
	pool *pgxpool.Pool
}

func NewMentorProfileRepository(pool *pgxpool.Pool) *MentorProfileRepository {
	return &MentorProfileRepository{pool: pool}
}

func (r *MentorProfileRepository) CreateIfAbsent(ctx context.Context, p *entity.MentorProfile) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		INSERT INTO mentor_profiles (user_id, headline)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, p.UserID, p.Headline)
	if err != nil {
		return false, err
	}
	created := res.RowsAffected() == 1
	if created && len(p.Expertise) > 0 {
		for _, s := range p.Expertise {
			if _, err := r.pool.Exec(ctx, `
				INSERT INTO mentor_expertise (user_id, slug)
				VALUES ($1, $2)
				ON CONFLICT (user_id, slug) DO NOTHING
			`, p.UserID, s); err != nil {
				return created, err
			}
		}
	}
	return created, nil
}

func (r *MentorProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.MentorProfile, error) {
	p := &entity.MentorProfile{}
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, headline, created_at
		FROM mentor_profiles
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&p.UserID, &p.Headline, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT slug FROM mentor_expertise WHERE user_id = $1 ORDER BY slug
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		p.Expertise = append(p.Expertise, s)
	}
	return p, rows.Err()
}

func (r *MentorProfileRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM mentor_profiles WHERE user_id = $1)
	`, userID).Scan(&exists)
	return exists, err
}

func (r *MentorProfileRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM mentor_profiles WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *MentorProfileRepository) DeleteExpertiseByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM mentor_expertise WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *MentorProfileRepository) DeleteContentByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM mentor_content WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.MentorProfileRepository = (*MentorProfileRepository)(nil)
