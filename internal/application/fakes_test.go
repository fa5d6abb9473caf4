package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/repository"
	"github.com/mentorcircle/mentorcircle-api/pkg/mailer"
)

// In-memory repository fakes. They model the store semantics the services
// lean on: the partial uniqueness of live applications per email, conditional
// writes that report whether they won, and delete-if-exists deletes.

type fakeAppRepo struct {
	mu   sync.Mutex
	seq  int
	apps []*entity.Application
}

func newFakeAppRepo() *fakeAppRepo { return &fakeAppRepo{} }

func (r *fakeAppRepo) Insert(_ context.Context, a *entity.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.apps {
		if e.Email == a.Email && e.Status != entity.StatusRejected {
			return repository.ErrDuplicateConflict
		}
	}
	r.seq++
	a.ID = fmt.Sprintf("app-%d", r.seq)
	a.Status = entity.StatusPending
	a.SubmittedAt = time.Now().UTC()
	cp := *a
	r.apps = append(r.apps, &cp)
	return nil
}

func (r *fakeAppRepo) GetByID(_ context.Context, id string) (*entity.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.apps {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAppRepo) LatestByEmail(_ context.Context, email string) (*entity.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.apps) - 1; i >= 0; i-- {
		if r.apps[i].Email == email {
			cp := *r.apps[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAppRepo) TransitionFromPending(_ context.Context, id string, target entity.ApplicationStatus, reviewedBy *string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.apps {
		if e.ID == id && e.Status == entity.StatusPending {
			e.Status = target
			e.ReviewedAt = &at
			e.ReviewedBy = reviewedBy
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppRepo) AppendNote(_ context.Context, id string, n entity.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.apps {
		if e.ID == id {
			e.Notes = append(e.Notes, n)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeAppRepo) SetDocumentURL(_ context.Context, id string, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.apps {
		if e.ID == id {
			e.DocumentURL = url
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeAppRepo) ApprovedAwaitingProvisioning(_ context.Context, _ int) ([]repository.ProvisioningCandidate, error) {
	return nil, nil
}

var _ repository.ApplicationRepository = (*fakeAppRepo)(nil)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User

	// lockRoleHook runs inside LockRole before the write; tests use it to
	// interleave a conflicting mutation.
	lockRoleHook func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) add(u *entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email {
			return repository.ErrDuplicateConflict
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	u.Role = entity.RoleUnset
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) LockRole(_ context.Context, userID string, role entity.Role) (bool, error) {
	if r.lockRoleHook != nil {
		r.lockRoleHook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.RoleSelectionCompleted {
		return false, nil
	}
	u.Role = role
	u.RoleSelectionCompleted = true
	return true, nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

type fakeMentorRepo struct {
	mu        sync.Mutex
	profiles  map[string]*entity.MentorProfile
	expertise map[string][]string
	content   map[string]int

	createErr error
}

func newFakeMentorRepo() *fakeMentorRepo {
	return &fakeMentorRepo{
		profiles:  map[string]*entity.MentorProfile{},
		expertise: map[string][]string{},
		content:   map[string]int{},
	}
}

func (r *fakeMentorRepo) CreateIfAbsent(_ context.Context, p *entity.MentorProfile) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return false, r.createErr
	}
	if _, ok := r.profiles[p.UserID]; ok {
		return false, nil
	}
	cp := *p
	r.profiles[p.UserID] = &cp
	r.expertise[p.UserID] = append([]string(nil), p.Expertise...)
	return true, nil
}

func (r *fakeMentorRepo) GetByUserID(_ context.Context, userID string) (*entity.MentorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		cp.Expertise = append([]string(nil), r.expertise[userID]...)
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMentorRepo) ExistsByUserID(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.profiles[userID]
	return ok, nil
}

func (r *fakeMentorRepo) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[userID]; !ok {
		return 0, nil
	}
	delete(r.profiles, userID)
	return 1, nil
}

func (r *fakeMentorRepo) DeleteExpertiseByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.expertise[userID]))
	delete(r.expertise, userID)
	return n, nil
}

func (r *fakeMentorRepo) DeleteContentByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(r.content[userID])
	delete(r.content, userID)
	return n, nil
}

var _ repository.MentorProfileRepository = (*fakeMentorRepo)(nil)

type fakeStudentRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.StudentProfile
	saved    map[string]int
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{
		profiles: map[string]*entity.StudentProfile{},
		saved:    map[string]int{},
	}
}

func (r *fakeStudentRepo) CreateIfAbsent(_ context.Context, p *entity.StudentProfile) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.UserID]; ok {
		return false, nil
	}
	cp := *p
	r.profiles[p.UserID] = &cp
	return true, nil
}

func (r *fakeStudentRepo) ExistsByUserID(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.profiles[userID]
	return ok, nil
}

func (r *fakeStudentRepo) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[userID]; !ok {
		return 0, nil
	}
	delete(r.profiles, userID)
	return 1, nil
}

func (r *fakeStudentRepo) DeleteSavedContentByUserID(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(r.saved[userID])
	delete(r.saved, userID)
	return n, nil
}

var _ repository.StudentProfileRepository = (*fakeStudentRepo)(nil)

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.NotificationJob
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if job, ok := body.(mailer.NotificationJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return nil
}

func (p *fakePublisher) published() []mailer.NotificationJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mailer.NotificationJob(nil), p.jobs...)
}

var _ Notifier = (*fakePublisher)(nil)
