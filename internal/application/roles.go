package application

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/repository"
	"github.com/mentorcircle/mentorcircle-api/pkg/helpers"
)

// RoleService is the role transition engine: the one-time, irrevocable
// commitment of an account to student, mentor, or both, plus the exclusive
// data-partitioning cleanup that commitment implies.
type RoleService struct {
	Users    repository.UserRepository
	Mentors  repository.MentorProfileRepository
	Students repository.StudentProfileRepository
	Redis    *redis.Client
	Logger   *logrus.Logger
}

func NewRoleService(users repository.UserRepository, mentors repository.MentorProfileRepository, students repository.StudentProfileRepository, rdb *redis.Client, logger *logrus.Logger) *RoleService {
	return &RoleService{Users: users, Mentors: mentors, Students: students, Redis: rdb, Logger: logger}
}

// SelectRole performs the role commitment:
//
//   - student: delete every mentor-side entity and clear the mentor-mode
//     cached preference
//   - mentor: symmetric cleanup of student-side entities
//   - both: no cleanup, nothing destructive
//
// Cleanup is best-effort-complete: each entity type is deleted independently
// and a failure is logged per type without blocking the role flag — a user
// who opted out of mentoring must never be stuck because of an unrelated
// cleanup failure. Every delete has delete-if-exists semantics, so a retry
// after a partial failure is always safe.
func (s *RoleService) SelectRole(ctx context.Context, userID string, role entity.Role) error {
	if !role.Selectable() {
		return ErrInvalidRole
	}

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.RoleSelectionCompleted {
		return ErrRoleAlreadyLocked
	}

	switch role {
	case entity.RoleStudent:
		s.purgeMentorData(ctx, userID)
	case entity.RoleMentor:
		s.purgeStudentData(ctx, userID)
	case entity.RoleBoth:
		// the only branch with no destructive side effect
	}

	locked, err := s.Users.LockRole(ctx, userID, role)
	if err != nil {
		return err
	}
	if !locked {
		// A concurrent selection flipped the flag between our read and the
		// conditional write.
		return ErrRoleAlreadyLocked
	}

	// Read back and verify rather than trusting the write: a conflicting
	// concurrent mutation is surfaced to the caller, who owns retry/alerting.
	verified, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if verified.Role != role || !verified.RoleSelectionCompleted {
		return ErrRoleVerificationFailed
	}

	if role == entity.RoleStudent || role == entity.RoleBoth {
		if _, err := s.Students.CreateIfAbsent(ctx, &entity.StudentProfile{UserID: userID}); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("student profile provisioning failed")
		}
	}
	return nil
}

func (s *RoleService) purgeMentorData(ctx context.Context, userID string) {
	steps := []struct {
		entity string
		fn     func(context.Context, string) (int64, error)
	}{
		{"mentor_expertise", s.Mentors.DeleteExpertiseByUserID},
		{"mentor_content", s.Mentors.DeleteContentByUserID},
		{"mentor_profile", s.Mentors.DeleteByUserID},
	}
	for _, step := range steps {
		if n, err := step.fn(ctx, userID); err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "entity": step.entity}).Error("role cleanup step failed")
			}
		} else if n > 0 && s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": userID, "entity": step.entity, "deleted": n}).Info("role cleanup")
		}
	}
	s.clearPref(ctx, helpers.KeyMentorModePref(userID))
}

func (s *RoleService) purgeStudentData(ctx context.Context, userID string) {
	steps := []struct {
		entity string
		fn     func(context.Context, string) (int64, error)
	}{
		{"student_saved_content", s.Students.DeleteSavedContentByUserID},
		{"student_profile", s.Students.DeleteByUserID},
	}
	for _, step := range steps {
		if n, err := step.fn(ctx, userID); err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "entity": step.entity}).Error("role cleanup step failed")
			}
		} else if n > 0 && s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": userID, "entity": step.entity, "deleted": n}).Info("role cleanup")
		}
	}
	s.clearPref(ctx, helpers.KeyStudentModePref(userID))
}

func (s *RoleService) clearPref(ctx context.Context, key string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, key).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("preference cache clear failed")
	}
}
