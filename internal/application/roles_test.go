package application

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/pkg/helpers"
)

type roleFixture struct {
	users    *fakeUserRepo
	mentors  *fakeMentorRepo
	students *fakeStudentRepo
	redis    *miniredis.Miniredis
	svc      *RoleService
}

func newRoleFixture(t *testing.T) *roleFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &roleFixture{
		users:    newFakeUserRepo(),
		mentors:  newFakeMentorRepo(),
		students: newFakeStudentRepo(),
		redis:    mr,
	}
	f.svc = NewRoleService(f.users, f.mentors, f.students, rdb, nil)
	return f
}

func (f *roleFixture) addUser(t *testing.T, id string) *entity.User {
	t.Helper()
	u := &entity.User{ID: id, Email: id + "@example.com", Role: entity.RoleUnset}
	f.users.add(u)
	return u
}

func TestSelectRoleStudentPurgesMentorData(t *testing.T) {
	f := newRoleFixture(t)
	u := f.addUser(t, "u1")
	ctx := context.Background()

	// Pre-existing mentor-side entities and a cached mentor-mode preference.
	_, err := f.mentors.CreateIfAbsent(ctx, &entity.MentorProfile{UserID: u.ID, Expertise: []string{"physics"}})
	require.NoError(t, err)
	f.mentors.content[u.ID] = 3
	f.redis.Set(helpers.KeyMentorModePref(u.ID), "1")

	require.NoError(t, f.svc.SelectRole(ctx, u.ID, entity.RoleStudent))

	locked, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStudent, locked.Role)
	assert.True(t, locked.RoleSelectionCompleted)

	exists, err := f.mentors.ExistsByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, exists, "mentor profile must be gone")
	assert.Empty(t, f.mentors.expertise[u.ID])
	assert.Zero(t, f.mentors.content[u.ID])
	assert.False(t, f.redis.Exists(helpers.KeyMentorModePref(u.ID)), "mentor-mode preference must be cleared")

	// Student side gets its profile skeleton.
	hasStudent, err := f.students.ExistsByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, hasStudent)
}

func TestSelectRoleMentorPurgesStudentData(t *testing.T) {
	f := newRoleFixture(t)
	u := f.addUser(t, "u1")
	ctx := context.Background()

	_, err := f.students.CreateIfAbsent(ctx, &entity.StudentProfile{UserID: u.ID})
	require.NoError(t, err)
	f.students.saved[u.ID] = 5
	f.redis.Set(helpers.KeyStudentModePref(u.ID), "1")

	require.NoError(t, f.svc.SelectRole(ctx, u.ID, entity.RoleMentor))

	hasStudent, err := f.students.ExistsByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, hasStudent)
	assert.Zero(t, f.students.saved[u.ID])
	assert.False(t, f.redis.Exists(helpers.KeyStudentModePref(u.ID)))

	locked, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleMentor, locked.Role)
}

func TestSelectRoleBothDeletesNothing(t *testing.T) {
	f := newRoleFixture(t)
	u := f.addUser(t, "u1")
	ctx := context.Background()

	_, err := f.mentors.CreateIfAbsent(ctx, &entity.MentorProfile{UserID: u.ID})
	require.NoError(t, err)
	f.redis.Set(helpers.KeyMentorModePref(u.ID), "1")
	f.redis.Set(helpers.KeyStudentModePref(u.ID), "1")

	require.NoError(t, f.svc.SelectRole(ctx, u.ID, entity.RoleBoth))

	exists, err := f.mentors.ExistsByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, exists, "both keeps mentor data")
	assert.True(t, f.redis.Exists(helpers.KeyMentorModePref(u.ID)))
	assert.True(t, f.redis.Exists(helpers.KeyStudentModePref(u.ID)))

	hasStudent, err := f.students.ExistsByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, hasStudent, "both provisions the student profile too")
}

func TestSelectRoleIsOneWay(t *testing.T) {
	f := newRoleFixture(t)
	u := f.addUser(t, "u1")
	ctx := context.Background()

	require.NoError(t, f.svc.SelectRole(ctx, u.ID, entity.RoleMentor))

	err := f.svc.SelectRole(ctx, u.ID, entity.RoleStudent)
	assert.ErrorIs(t, err, ErrRoleAlreadyLocked)

	// Re-selecting the same role is rejected too: there is no overwrite path.
	err = f.svc.SelectRole(ctx, u.ID, entity.RoleMentor)
	assert.ErrorIs(t, err, ErrRoleAlreadyLocked)

	locked, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleMentor, locked.Role)
}

func TestSelectRoleValidation(t *testing.T) {
	f := newRoleFixture(t)

	assert.ErrorIs(t, f.svc.SelectRole(context.Background(), "u1", entity.Role("admin")), ErrInvalidRole)
	assert.ErrorIs(t, f.svc.SelectRole(context.Background(), "u1", entity.RoleUnset), ErrInvalidRole)
	assert.ErrorIs(t, f.svc.SelectRole(context.Background(), "missing", entity.RoleStudent), ErrUserNotFound)
}

func TestSelectRoleConcurrentLockLosesGracefully(t *testing.T) {
	f := newRoleFixture(t)
	u := f.addUser(t, "u1")
	ctx := context.Background()

	// A concurrent selection lands between our read and our conditional write.
	f.users.lockRoleHook = func() {
		f.users.lockRoleHook = nil
		_, _ = f.users.LockRole(ctx, u.ID, entity.RoleMentor)
	}

	err := f.svc.SelectRole(ctx, u.ID, entity.RoleStudent)
	assert.ErrorIs(t, err, ErrRoleAlreadyLocked)

	locked, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleMentor, locked.Role, "the first write wins")
}

// conflictingReadUserRepo returns a different role from the post-lock read,
// simulating a conflicting write landing between LockRole and the verification
// read-back.
type conflictingReadUserRepo struct {
	*fakeUserRepo
	reads int
}

func (r *conflictingReadUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := r.fakeUserRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.reads++
	if r.reads > 1 {
		u.Role = entity.RoleMentor
		u.RoleSelectionCompleted = true
	}
	return u, nil
}

func TestSelectRoleSurfacesVerificationFailure(t *testing.T) {
	f := newRoleFixture(t)
	u := f.addUser(t, "u1")
	users := &conflictingReadUserRepo{fakeUserRepo: f.users}
	svc := NewRoleService(users, f.mentors, f.students, nil, nil)

	err := svc.SelectRole(context.Background(), u.ID, entity.RoleStudent)
	assert.ErrorIs(t, err, ErrRoleVerificationFailed)
}

func TestSelectRoleCleanupIsIdempotent(t *testing.T) {
	f := newRoleFixture(t)
	u := f.addUser(t, "u1")
	ctx := context.Background()

	// Nothing to purge: every delete is delete-if-exists, so a clean account
	// selects its role without any error.
	require.NoError(t, f.svc.SelectRole(ctx, u.ID, entity.RoleStudent))

	// And re-running the purge directly (a retry after partial failure) stays
	// safe.
	f.svc.purgeMentorData(ctx, u.ID)
	f.svc.purgeMentorData(ctx, u.ID)
}
