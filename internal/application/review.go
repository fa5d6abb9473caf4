package application

import (
	"context"
	"errors"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sirupsen/logrus"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/repository"
	"github.com/mentorcircle/mentorcircle-api/pkg/mailer"
)

// TransitionResult reports the outcome of one transition attempt. Noop means
// the record was already terminal: success, but no side effects were fired.
type TransitionResult struct {
	Noop   bool
	Record *entity.Application
}

// ReviewService is the approval state machine. Every trigger — the form
// handler, the manual-review surface, admin tooling, batch re-processing —
// goes through Transition; none of them holds a lock. Correctness rests on
// the store's conditional write.
type ReviewService struct {
	Apps    repository.ApplicationRepository
	Users   repository.UserRepository
	Mentors repository.MentorProfileRepository
	Pub     Notifier
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewReviewService(apps repository.ApplicationRepository, users repository.UserRepository, mentors repository.MentorProfileRepository, pub Notifier, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ReviewService {
	return &ReviewService{Apps: apps, Users: users, Mentors: mentors, Pub: pub, Logger: logger, ES: es, ESIndex: esIndex}
}

// Transition moves a pending application to approved or rejected.
//
// The fast-path status read makes repeated triggers (a sheet edit firing
// twice, two reviewers clicking within the same window) a cheap no-op. The
// conditional update is what actually decides races: the loser sees zero rows
// affected and is folded into the same no-op result.
func (s *ReviewService) Transition(ctx context.Context, applicationID string, target entity.ApplicationStatus, reviewerID string) (TransitionResult, error) {
	if !target.Terminal() {
		return TransitionResult{}, ErrInvalidTargetStatus
	}

	app, err := s.Apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TransitionResult{}, ErrApplicationNotFound
		}
		return TransitionResult{}, err
	}
	if app.Status != entity.StatusPending {
		return TransitionResult{Noop: true, Record: app}, nil
	}

	if target == entity.StatusApproved {
		if err := s.checkNotAlreadyMentor(ctx, app.Email); err != nil {
			return TransitionResult{}, err
		}
	}

	var reviewedBy *string
	if reviewerID != "" {
		reviewedBy = &reviewerID
	}
	won, err := s.Apps.TransitionFromPending(ctx, applicationID, target, reviewedBy, time.Now().UTC())
	if err != nil {
		return TransitionResult{}, err
	}
	if !won {
		// Another trigger got there first. Report its outcome, fire nothing.
		current, rerr := s.Apps.GetByID(ctx, applicationID)
		if rerr != nil {
			return TransitionResult{}, rerr
		}
		return TransitionResult{Noop: true, Record: current}, nil
	}

	updated, err := s.Apps.GetByID(ctx, applicationID)
	if err != nil {
		return TransitionResult{}, err
	}

	event := mailer.EventApplicationRejected
	if target == entity.StatusApproved {
		event = mailer.EventApplicationApproved
	}
	s.notifyAsync(applicationID, mailer.NotificationJob{
		Event: event,
		Email: updated.Email,
		Metadata: map[string]any{
			"name":           updated.FullName,
			"application_id": updated.ID,
		},
	})

	if target == entity.StatusApproved {
		// Approval is the durable source of truth; provisioning is a
		// retryable projection of it. A failure here is noted on the record
		// and picked up by the reconciler, never rolled back.
		if err := s.Provision(ctx, updated); err != nil {
			s.noteProvisioningFailure(ctx, applicationID, err)
		}
	}

	indexApplication(ctx, s.ES, s.ESIndex, updated, s.Logger)
	return TransitionResult{Noop: false, Record: updated}, nil
}

// checkNotAlreadyMentor enforces the approval precondition: approving an
// applicant who already has a mentor role or a live mentor profile would
// create duplicate profile entities downstream.
func (s *ReviewService) checkNotAlreadyMentor(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil // no account yet, nothing to collide with
		}
		return err
	}
	if u.Role == entity.RoleMentor || u.Role == entity.RoleBoth {
		return ErrAlreadyMentor
	}
	exists, err := s.Mentors.ExistsByUserID(ctx, u.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyMentor
	}
	return nil
}

// Provision materializes the mentor profile skeleton for an approved
// application. Idempotent: guarded by the profile store's existence check.
// When the applicant has no user account yet, provisioning is deferred to the
// reconciler, which runs after account signup.
func (s *ReviewService) Provision(ctx context.Context, app *entity.Application) error {
	u, err := s.Users.GetByEmail(ctx, app.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errors.New("no user account for " + app.Email + "; deferred")
		}
		return err
	}
	created, err := s.Mentors.CreateIfAbsent(ctx, &entity.MentorProfile{
		UserID:    u.ID,
		Expertise: app.Expertise,
	})
	if err != nil {
		return err
	}
	if created && s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "application_id": app.ID}).Info("mentor profile provisioned")
	}
	return nil
}

// TransitionByEmail backs the spreadsheet-style review surface, which is
// keyed by row email rather than application id.
func (s *ReviewService) TransitionByEmail(ctx context.Context, email string, target entity.ApplicationStatus, reviewerID string) (TransitionResult, error) {
	app, err := s.Apps.LatestByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TransitionResult{}, ErrApplicationNotFound
		}
		return TransitionResult{}, err
	}
	return s.Transition(ctx, app.ID, target, reviewerID)
}

// AddNote appends a manual review annotation.
func (s *ReviewService) AddNote(ctx context.Context, applicationID, reviewerID, text string) error {
	err := s.Apps.AppendNote(ctx, applicationID, entity.Note{
		At:   time.Now().UTC(),
		By:   reviewerID,
		Text: text,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrApplicationNotFound
	}
	return err
}

// Search queries the review-surface index.
func (s *ReviewService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	return searchApplications(ctx, s.ES, s.ESIndex, q, size)
}

func (s *ReviewService) noteProvisioningFailure(ctx context.Context, applicationID string, cause error) {
	if s.Logger != nil {
		s.Logger.WithError(cause).WithField("application_id", applicationID).Warn("mentor provisioning failed; reconciler will retry")
	}
	if err := s.Apps.AppendNote(ctx, applicationID, entity.Note{
		At:   time.Now().UTC(),
		By:   "system",
		Text: "provisioning failed: " + cause.Error(),
	}); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("application_id", applicationID).Error("failed to record provisioning failure")
	}
}

func (s *ReviewService) notifyAsync(applicationID string, job mailer.NotificationJob) {
	if s.Pub == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Pub.PublishJSON(ctx, job); err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("event", job.Event).Warn("notification publish failed")
			}
			_ = s.Apps.AppendNote(ctx, applicationID, entity.Note{
				At:   time.Now().UTC(),
				By:   "system",
				Text: "notification publish failed: " + err.Error(),
			})
		}
	}()
}
