package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID   map[int64]*domain.Credential
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.Credential)}
}

func (r *stubUserRepo) byEmail(email string) *domain.Credential {
	for _, c := range r.byID {
		if strings.EqualFold(c.Email, email) {
			return c
		}
	}
	return nil
}

func (r *stubUserRepo) Create(_ context.Context, cred *domain.Credential) error {
	if r.byEmail(cred.Email) != nil {
		return domain.ErrUserExists
	}
	r.nextID++
	cred.ID = r.nextID
	clone := *cred
	r.byID[cred.ID] = &clone
	return nil
}

func (r *stubUserRepo) FindCredentials(_ context.Context, email string) (*domain.Credential, error) {
	c := r.byEmail(email)
	if c == nil {
		return nil, domain.ErrUserNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.byEmail(email) != nil, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := c.User
	return &u, nil
}

func (r *stubUserRepo) PasswordHash(_ context.Context, id int64) (string, error) {
	c, ok := r.byID[id]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return c.PasswordHash, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(r.byID))
	for _, c := range r.byID {
		u := c.User
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *stubUserRepo) Update(ctx context.Context, id int64, patch ports.UserPatch) (*domain.User, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Email != nil {
		if other := r.byEmail(*patch.Email); other != nil && other.ID != id {
			return nil, domain.ErrUserExists
		}
		c.Email = *patch.Email
	}
	if patch.ProfilePhoto != nil {
		photo := *patch.ProfilePhoto
		c.ProfilePhoto = &photo
	}
	return r.FindByID(ctx, id)
}

func (r *stubUserRepo) UpdateRole(ctx context.Context, id int64, role string) (*domain.User, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c.Role = role
	return r.FindByID(ctx, id)
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	c.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

// seed stores a user with a throwaway hash and returns its identity.
func (r *stubUserRepo) seed(email, role string) domain.Identity {
	cred := &domain.Credential{
		User:         domain.User{Email: email, Role: role, CreatedAt: time.Now()},
		PasswordHash: "unused",
	}
	_ = r.Create(context.Background(), cred)
	return cred.User.Identity()
}

type stubProjectRepo struct {
	byID   map[int64]*domain.Project
	nextID int64
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{byID: make(map[int64]*domain.Project)}
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) error {
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id int64) (*domain.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProjectRepo) List(_ context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	out := make([]*domain.Project, 0)
	for _, p := range r.byID {
		if f.OwnerID != 0 && p.OwnerID != f.OwnerID {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubProjectRepo) Update(ctx context.Context, id int64, patch ports.ProjectPatch) (*domain.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	return r.FindByID(ctx, id)
}

func (r *stubProjectRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubTaskRepo struct {
	byID   map[int64]*domain.Task
	tagIDs map[int64][]int64
	nextID int64
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{byID: make(map[int64]*domain.Task), tagIDs: make(map[int64][]int64)}
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task, tagIDs []int64) error {
	r.nextID++
	t.ID = r.nextID
	clone := *t
	r.byID[t.ID] = &clone
	r.tagIDs[t.ID] = append([]int64(nil), tagIDs...)
	return nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id int64) (*domain.Task, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *t
	clone.Tags = []domain.Tag{}
	for _, tagID := range r.tagIDs[id] {
		clone.Tags = append(clone.Tags, domain.Tag{ID: tagID})
	}
	return &clone, nil
}

func (r *stubTaskRepo) List(ctx context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0)
	for id, t := range r.byID {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		task, _ := r.FindByID(ctx, id)
		out = append(out, task)
	}
	return out, nil
}

func (r *stubTaskRepo) Update(ctx context.Context, id int64, patch ports.TaskPatch) (*domain.Task, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = domain.TaskStatus(*patch.Status)
	}
	if patch.AssignedUserID != nil {
		if *patch.AssignedUserID == 0 {
			t.AssignedUserID = nil
		} else {
			v := *patch.AssignedUserID
			t.AssignedUserID = &v
		}
	}
	if patch.TagIDs != nil {
		r.tagIDs[id] = append([]int64(nil), *patch.TagIDs...)
	}
	return r.FindByID(ctx, id)
}

func (r *stubTaskRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.byID, id)
	delete(r.tagIDs, id)
	return nil
}

func (r *stubTaskRepo) Stats(_ context.Context, _ ports.TaskFilter) (*domain.TaskStats, error) {
	stats := &domain.TaskStats{Counts: map[domain.TaskStatus]int64{}}
	for _, t := range r.byID {
		stats.Counts[t.Status]++
		stats.Total++
	}
	return stats, nil
}

type stubTagRepo struct {
	byID   map[int64]*domain.Tag
	nextID int64
}

func newStubTagRepo() *stubTagRepo {
	return &stubTagRepo{byID: make(map[int64]*domain.Tag)}
}

func (r *stubTagRepo) Create(_ context.Context, tag *domain.Tag) error {
	for _, t := range r.byID {
		if t.Name == tag.Name {
			return domain.ErrTagExists
		}
	}
	r.nextID++
	tag.ID = r.nextID
	clone := *tag
	r.byID[tag.ID] = &clone
	return nil
}

func (r *stubTagRepo) FindByID(_ context.Context, id int64) (*domain.Tag, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTagNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTagRepo) CountExisting(_ context.Context, ids []int64) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := r.byID[id]; ok {
			n++
		}
	}
	return n, nil
}

func (r *stubTagRepo) List(_ context.Context) ([]*domain.Tag, error) {
	out := make([]*domain.Tag, 0, len(r.byID))
	for _, t := range r.byID {
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubTagRepo) Rename(ctx context.Context, id int64, name string) (*domain.Tag, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTagNotFound
	}
	for _, other := range r.byID {
		if other.ID != id && other.Name == name {
			return nil, domain.ErrTagExists
		}
	}
	t.Name = name
	return r.FindByID(ctx, id)
}

func (r *stubTagRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrTagNotFound
	}
	delete(r.byID, id)
	return nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type recordingPublisher struct {
	entries []domain.TaskActivity
}

func (p *recordingPublisher) Publish(a domain.TaskActivity) {
	p.entries = append(p.entries, a)
}

func (p *recordingPublisher) actions() []domain.ActivityAction {
	out := make([]domain.ActivityAction, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e.Action)
	}
	return out
}

type stubRevoker struct {
	revoked map[int64]time.Time
	err     error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[int64]time.Time)}
}

func (r *stubRevoker) RevokeSessions(_ context.Context, userID int64, at time.Time) (time.Time, error) {
	if r.err != nil {
		return time.Time{}, r.err
	}
	r.revoked[userID] = at
	return at, nil
}

func (r *stubRevoker) RevokedBefore(_ context.Context, userID int64) (time.Time, error) {
	return r.revoked[userID], r.err
}

var errStoreDown = errors.New("store down")
