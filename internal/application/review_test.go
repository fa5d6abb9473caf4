package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/pkg/mailer"
)

type reviewFixture struct {
	apps    *fakeAppRepo
	users   *fakeUserRepo
	mentors *fakeMentorRepo
	pub     *fakePublisher
	svc     *ReviewService
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		apps:    newFakeAppRepo(),
		users:   newFakeUserRepo(),
		mentors: newFakeMentorRepo(),
		pub:     &fakePublisher{},
	}
	f.svc = NewReviewService(f.apps, f.users, f.mentors, f.pub, nil, nil, "")
	return f
}

func (f *reviewFixture) submitPending(t *testing.T) *entity.Application {
	t.Helper()
	app := Normalize(validAnswers())
	require.NoError(t, f.apps.Insert(context.Background(), app))
	return app
}

func (f *reviewFixture) addAccount(t *testing.T, email string) *entity.User {
	t.Helper()
	u := &entity.User{ID: "user-1", Email: email, Role: entity.RoleUnset}
	f.users.add(u)
	return u
}

func TestTransitionApprovesAndProvisions(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)
	u := f.addAccount(t, app.Email)
	ctx := context.Background()

	res, err := f.svc.Transition(ctx, app.ID, entity.StatusApproved, "rev-1")
	require.NoError(t, err)
	assert.False(t, res.Noop)
	assert.Equal(t, entity.StatusApproved, res.Record.Status)
	require.NotNil(t, res.Record.ReviewedBy)
	assert.Equal(t, "rev-1", *res.Record.ReviewedBy)
	assert.NotNil(t, res.Record.ReviewedAt)

	profile, err := f.mentors.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, app.Expertise, profile.Expertise)

	require.Eventually(t, func() bool {
		return len(f.pub.published()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, mailer.EventApplicationApproved, f.pub.published()[0].Event)
}

func TestTransitionSecondTriggerIsNoop(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)
	f.addAccount(t, app.Email)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, app.ID, entity.StatusApproved, "rev-1")
	require.NoError(t, err)

	// Same edit firing again, and a different reviewer trying to reject: both
	// fold into a no-op that reports the recorded outcome.
	for _, target := range []entity.ApplicationStatus{entity.StatusApproved, entity.StatusRejected} {
		res, err := f.svc.Transition(ctx, app.ID, target, "rev-2")
		require.NoError(t, err)
		assert.True(t, res.Noop)
		assert.Equal(t, entity.StatusApproved, res.Record.Status)
		require.NotNil(t, res.Record.ReviewedBy)
		assert.Equal(t, "rev-1", *res.Record.ReviewedBy, "no-op must not overwrite review metadata")
	}

	// Side effects fired exactly once.
	require.Eventually(t, func() bool {
		return len(f.pub.published()) == 1
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, f.pub.published(), 1)
}

func TestTransitionConcurrentTriggersExactlyOneWinner(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)
	f.addAccount(t, app.Email)

	const triggers = 16
	results := make([]TransitionResult, triggers)
	errs := make([]error, triggers)

	var wg sync.WaitGroup
	for i := 0; i < triggers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Transition(context.Background(), app.ID, entity.StatusApproved, "rev-1")
		}(i)
	}
	wg.Wait()

	wins := 0
	for i := 0; i < triggers; i++ {
		require.NoError(t, errs[i])
		if !results[i].Noop {
			wins++
		}
		assert.Equal(t, entity.StatusApproved, results[i].Record.Status)
	}
	assert.Equal(t, 1, wins, "the conditional write must admit exactly one winner")

	require.Eventually(t, func() bool {
		return len(f.pub.published()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestTransitionRejectsInvalidTarget(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)

	_, err := f.svc.Transition(context.Background(), app.ID, entity.StatusPending, "rev-1")
	assert.ErrorIs(t, err, ErrInvalidTargetStatus)

	_, err = f.svc.Transition(context.Background(), app.ID, entity.ApplicationStatus("archived"), "rev-1")
	assert.ErrorIs(t, err, ErrInvalidTargetStatus)
}

func TestTransitionUnknownApplication(t *testing.T) {
	f := newReviewFixture(t)
	_, err := f.svc.Transition(context.Background(), "missing", entity.StatusApproved, "rev-1")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestTransitionBlocksAlreadyMentor(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)
	u := f.addAccount(t, app.Email)
	u.Role = entity.RoleMentor
	f.users.add(u)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, app.ID, entity.StatusApproved, "rev-1")
	assert.ErrorIs(t, err, ErrAlreadyMentor)

	// The precondition applies to approval only; rejection goes through.
	res, err := f.svc.Transition(ctx, app.ID, entity.StatusRejected, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, res.Record.Status)
}

func TestTransitionBlocksWhenProfileExists(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)
	u := f.addAccount(t, app.Email)
	_, err := f.mentors.CreateIfAbsent(context.Background(), &entity.MentorProfile{UserID: u.ID})
	require.NoError(t, err)

	_, err = f.svc.Transition(context.Background(), app.ID, entity.StatusApproved, "rev-1")
	assert.ErrorIs(t, err, ErrAlreadyMentor)
}

func TestProvisioningFailureNeverRollsBackApproval(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)
	f.addAccount(t, app.Email)
	f.mentors.createErr = errors.New("profile store down")
	ctx := context.Background()

	res, err := f.svc.Transition(ctx, app.ID, entity.StatusApproved, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, res.Record.Status)

	stored, err := f.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, stored.Status)
	require.NotEmpty(t, stored.Notes)
	assert.Contains(t, stored.Notes[len(stored.Notes)-1].Text, "provisioning failed")
}

func TestProvisioningDeferredWithoutAccount(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)
	ctx := context.Background()

	res, err := f.svc.Transition(ctx, app.ID, entity.StatusApproved, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, res.Record.Status)

	stored, err := f.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.Notes)
	assert.Contains(t, stored.Notes[len(stored.Notes)-1].Text, "deferred")
}

func TestTransitionByEmailUsesLatestApplication(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)
	f.addAccount(t, app.Email)

	res, err := f.svc.TransitionByEmail(context.Background(), strings.ToUpper(app.Email), entity.StatusRejected, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, res.Record.Status)

	_, err = f.svc.TransitionByEmail(context.Background(), "nobody@example.com", entity.StatusRejected, "rev-1")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestNotificationFailureIsNotedNotFatal(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)
	f.addAccount(t, app.Email)
	f.pub.err = errors.New("broker unreachable")

	res, err := f.svc.Transition(context.Background(), app.ID, entity.StatusApproved, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, res.Record.Status)

	require.Eventually(t, func() bool {
		stored, err := f.apps.GetByID(context.Background(), app.ID)
		if err != nil {
			return false
		}
		for _, n := range stored.Notes {
			if strings.Contains(n.Text, "notification publish failed") {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestAddNote(t *testing.T) {
	f := newReviewFixture(t)
	app := f.submitPending(t)
	ctx := context.Background()

	require.NoError(t, f.svc.AddNote(ctx, app.ID, "rev-1", "called the applicant"))
	require.NoError(t, f.svc.AddNote(ctx, app.ID, "rev-2", "references look fine"))

	stored, err := f.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, stored.Notes, 2)
	assert.Equal(t, "rev-1", stored.Notes[0].By)
	assert.Equal(t, "references look fine", stored.Notes[1].Text)

	assert.ErrorIs(t, f.svc.AddNote(ctx, "missing", "rev-1", "x"), ErrApplicationNotFound)
}
