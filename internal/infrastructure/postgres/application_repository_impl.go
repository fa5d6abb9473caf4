package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/repository"
)

const uniqueViolation = "23505"

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `
	id, email, full_name, institution, graduation_year, expertise, motivation,
	age_confirmed, agreement_accepted, document_url, status, submitted_at,
	reviewed_at, reviewed_by, notes
`

func (r *ApplicationRepository) Insert(ctx context.Context, a *entity.Application) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO applications
			(email, full_name, institution, graduation_year, expertise, motivation,
			 age_confirmed, agreement_accepted, document_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, status, submitted_at
	`, a.Email, a.FullName, a.Institution, a.GraduationYear, a.Expertise,
		a.Motivation, a.AgeConfirmed, a.AgreementAccepted, a.DocumentURL)

	if err := row.Scan(&a.ID, &a.Status, &a.SubmittedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateConflict
		}
		return err
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*entity.Application, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE id = $1
	`, id)
	return scanApplication(row)
}

func (r *ApplicationRepository) LatestByEmail(ctx context.Context, email string) (*entity.Application, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE email = $1
		ORDER BY submitted_at DESC
		LIMIT 1
	`, email)
	return scanApplication(row)
}

// TransitionFromPending is the single conditional write every approval trigger
// funnels through. When two triggers race, exactly one update matches the
// WHERE status = 'pending' predicate; the loser observes zero rows affected.
func (r *ApplicationRepository) TransitionFromPending(ctx context.Context, id string, target entity.ApplicationStatus, reviewedBy *string, at time.Time) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE applications
		SET status = $2, reviewed_at = $3, reviewed_by = $4
		WHERE id = $1 AND status = 'pending'
	`, id, target, at, reviewedBy)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *ApplicationRepository) AppendNote(ctx context.Context, id string, n entity.Note) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE applications
		SET notes = notes || $2::jsonb
		WHERE id = $1
	`, id, string(b))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) SetDocumentURL(ctx context.Context, id string, url string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE applications
		SET document_url = $2
		WHERE id = $1
	`, id, url)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) ApprovedAwaitingProvisioning(ctx context.Context, limit int) ([]repository.ProvisioningCandidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.email, u.id
		FROM applications a
		JOIN users u ON u.email = a.email
		LEFT JOIN mentor_profiles mp ON mp.user_id = u.id
		WHERE a.status = 'approved' AND mp.user_id IS NULL
		ORDER BY a.reviewed_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.ProvisioningCandidate
	for rows.Next() {
		var c repository.ProvisioningCandidate
		if err := rows.Scan(&c.ApplicationID, &c.Email, &c.UserID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanApplication(row pgx.Row) (*entity.Application, error) {
	a := &entity.Application{}
	var notes []byte
	if err := row.Scan(&a.ID, &a.Email, &a.FullName, &a.Institution,
		&a.GraduationYear, &a.Expertise, &a.Motivation, &a.AgeConfirmed,
		&a.AgreementAccepted, &a.DocumentURL, &a.Status, &a.SubmittedAt,
		&a.ReviewedAt, &a.ReviewedBy, &notes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &a.Notes); err != nil {
			return nil, err
		}
	}
	return a, nil
}

var _ repository.ApplicationRepository = (*ApplicationRepository)(nil)
