package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/repository"
	"github.com/mentorcircle/mentorcircle-api/pkg/helpers"
	"github.com/mentorcircle/mentorcircle-api/pkg/mailer"
)

// FormAnswer is one question/answer pair from an intake source. Answer may be
// a string, a bool, or a list of strings depending on the source.
type FormAnswer struct {
	Label  string `json:"label" binding:"required"`
	Answer any    `json:"answer"`
}

// ImportResult is the per-row outcome of a batch import. One failing row never
// cancels the rows after it.
type ImportResult struct {
	Row           int      `json:"row"`
	Success       bool     `json:"success"`
	ApplicationID string   `json:"application_id,omitempty"`
	Status        string   `json:"status,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

// IntakeService normalizes heterogeneous submissions into canonical
// application records and guards against duplicates.
type IntakeService struct {
	Apps      repository.ApplicationRepository
	Pub       Notifier
	Logger    *logrus.Logger
	GCS       *storage.Client
	GCSBucket string
	ES        *elasticsearch.Client
	ESIndex   string
}

func NewIntakeService(apps repository.ApplicationRepository, pub Notifier, logger *logrus.Logger, gcs *storage.Client, gcsBucket string, es *elasticsearch.Client, esIndex string) *IntakeService {
	return &IntakeService{Apps: apps, Pub: pub, Logger: logger, GCS: gcs, GCSBucket: gcsBucket, ES: es, ESIndex: esIndex}
}

// Normalize maps free-text question labels onto canonical fields and coerces
// answers. Labels that match no keyword are ignored rather than failed so new
// questions can be added to the form without a deploy.
func Normalize(answers []FormAnswer) *entity.Application {
	draft := &entity.Application{}
	for _, ans := range answers {
		field, ok := CanonicalField(ans.Label)
		if !ok {
			continue
		}
		switch field {
		case FieldEmail:
			draft.Email = entity.NormalizeEmail(answerString(ans.Answer))
		case FieldFullName:
			draft.FullName = strings.TrimSpace(answerString(ans.Answer))
		case FieldInstitution:
			draft.Institution = strings.TrimSpace(answerString(ans.Answer))
		case FieldGradYear:
			draft.GraduationYear = parseYear(answerString(ans.Answer))
		case FieldExpertise:
			draft.Expertise = answerList(ans.Answer)
		case FieldMotivation:
			draft.Motivation = strings.TrimSpace(answerString(ans.Answer))
		case FieldAge:
			draft.AgeConfirmed = answerBool(ans.Answer)
		case FieldAgreement:
			draft.AgreementAccepted = answerBool(ans.Answer)
		}
	}
	return draft
}

// Validate checks the required fields and collects every problem instead of
// stopping at the first one.
func Validate(a *entity.Application) *ValidationError {
	var errs []string
	if a.Email == "" {
		errs = append(errs, "email is required")
	}
	if a.FullName == "" {
		errs = append(errs, "full name is required")
	}
	if a.Institution == "" {
		errs = append(errs, "institution is required")
	}
	if !a.AgeConfirmed {
		errs = append(errs, "age confirmation is required")
	}
	if !a.AgreementAccepted {
		errs = append(errs, "agreement acceptance is required")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Submit runs the deduplication guard and inserts the application. The
// query-then-insert sequence is a fast path only; the store's uniqueness
// constraint is the arbiter under concurrent submissions.
func (s *IntakeService) Submit(ctx context.Context, draft *entity.Application) (*entity.Application, error) {
	if verr := Validate(draft); verr != nil {
		return nil, verr
	}
	draft.Email = entity.NormalizeEmail(draft.Email)

	existing, err := s.Apps.LatestByEmail(ctx, draft.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != entity.StatusRejected {
		return nil, &DuplicateApplicationError{ExistingID: existing.ID, Status: existing.Status}
	}

	if err := s.Apps.Insert(ctx, draft); err != nil {
		if errors.Is(err, repository.ErrDuplicateConflict) {
			// A concurrent submission won the insert race; report the row
			// that made it in.
			winner, lerr := s.Apps.LatestByEmail(ctx, draft.Email)
			if lerr == nil {
				return nil, &DuplicateApplicationError{ExistingID: winner.ID, Status: winner.Status}
			}
			return nil, &DuplicateApplicationError{Status: entity.StatusPending}
		}
		return nil, err
	}

	s.notifyAsync(mailer.NotificationJob{
		Event: mailer.EventConfirmationReceived,
		Email: draft.Email,
		Metadata: map[string]any{
			"name":           draft.FullName,
			"application_id": draft.ID,
		},
	})
	indexApplication(ctx, s.ES, s.ESIndex, draft, s.Logger)
	return draft, nil
}

// SubmitForm is the form-shaped entry point: normalize, then submit.
func (s *IntakeService) SubmitForm(ctx context.Context, answers []FormAnswer) (*entity.Application, error) {
	return s.Submit(ctx, Normalize(answers))
}

// ImportRows processes a batch of form-shaped rows, collecting a per-row
// result list. Validation failures and duplicates are recorded in the result;
// they never abort the batch.
func (s *IntakeService) ImportRows(ctx context.Context, rows [][]FormAnswer) []ImportResult {
	results := make([]ImportResult, 0, len(rows))
	for i, row := range rows {
		res := ImportResult{Row: i}
		app, err := s.SubmitForm(ctx, row)
		if err != nil {
			var verr *ValidationError
			var derr *DuplicateApplicationError
			switch {
			case errors.As(err, &verr):
				res.Errors = verr.Errors
			case errors.As(err, &derr):
				res.ApplicationID = derr.ExistingID
				res.Status = string(derr.Status)
				res.Errors = []string{derr.Error()}
			default:
				if s.Logger != nil {
					s.Logger.WithError(err).WithField("row", i).Error("import row failed")
				}
				res.Errors = []string{"internal error"}
			}
			results = append(results, res)
			continue
		}
		res.Success = true
		res.ApplicationID = app.ID
		res.Status = string(app.Status)
		results = append(results, res)
	}
	return results
}

// Status returns the coarse, applicant-visible status for an email.
func (s *IntakeService) Status(ctx context.Context, email string) (entity.ApplicationStatus, error) {
	a, err := s.Apps.LatestByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrApplicationNotFound
		}
		return "", err
	}
	return a.Status, nil
}

// AttachDocument uploads a supporting document to GCS and records its URL on
// the application.
func (s *IntakeService) AttachDocument(ctx context.Context, applicationID, filename, contentType string, r io.Reader) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("document storage not configured")
	}
	if _, err := s.Apps.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrApplicationNotFound
		}
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("applications", applicationID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.Apps.SetDocumentURL(ctx, applicationID, url); err != nil {
		return "", err
	}
	return url, nil
}

// notifyAsync dispatches a notification without ever blocking or failing the
// caller: a slow or dead queue cannot delay an intake or an approval.
func (s *IntakeService) notifyAsync(job mailer.NotificationJob) {
	if s.Pub == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("event", job.Event).Warn("notification publish failed")
		}
	}()
}

func answerString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case []string:
		return strings.Join(x, "; ")
	case []any:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, fmt.Sprintf("%v", e))
		}
		return strings.Join(parts, "; ")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}

func answerBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return Truthy(answerString(v))
}

func answerList(v any) []string {
	return NormalizeList(answerString(v))
}

// parseYear pulls the first four-digit number out of an answer like "2027" or
// "Class of 2027". Zero when there is none.
func parseYear(s string) int {
	run := 0
	val := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			run++
			val = val*10 + int(r-'0')
			if run == 4 {
				return val
			}
		} else {
			run = 0
			val = 0
		}
	}
	return 0
}
