package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

type taskFixture struct {
	svc       *TaskService
	tasks     *stubTaskRepo
	tags      *stubTagRepo
	publisher *recordingPublisher
	admin     domain.Identity
	owner     domain.Identity
	helper    domain.Identity
	outsider  domain.Identity
	project   *domain.Project
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	users := newStubUserRepo()
	projects := newStubProjectRepo()
	f := &taskFixture{
		tasks:     newStubTaskRepo(),
		tags:      newStubTagRepo(),
		publisher: &recordingPublisher{},
		admin:     users.seed("admin@x.com", domain.RoleAdmin),
		owner:     users.seed("owner@x.com", domain.RoleUser),
		helper:    users.seed("helper@x.com", domain.RoleUser),
		outsider:  users.seed("outsider@x.com", domain.RoleUser),
	}
	f.project = &domain.Project{Title: "p", OwnerID: f.owner.ID}
	_ = projects.Create(context.Background(), f.project)
	f.svc = NewTaskService(f.tasks, projects, users, f.tags, nil, f.publisher, zerolog.Nop())
	return f
}

func (f *taskFixture) tag(t *testing.T, name string) int64 {
	t.Helper()
	tag := &domain.Tag{Name: name}
	if err := f.tags.Create(context.Background(), tag); err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	return tag.ID
}

func TestTaskService_Create(t *testing.T) {
	f := newTaskFixture(t)
	bug := f.tag(t, "bug")

	task, err := f.svc.Create(context.Background(), f.owner, ports.NewTask{
		Title:          " Fix login ",
		ProjectID:      f.project.ID,
		AssignedUserID: &f.helper.ID,
		TagIDs:         []int64{bug, bug},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Title != "Fix login" || task.Status != domain.TaskPending {
		t.Fatalf("unexpected task %+v", task)
	}
	if !task.IsAssignedTo(f.helper.ID) {
		t.Fatalf("expected assignee %d", f.helper.ID)
	}
	if len(task.Tags) != 1 || task.Tags[0].ID != bug {
		t.Fatalf("tags not de-duplicated: %+v", task.Tags)
	}

	if got := f.publisher.actions(); !reflect.DeepEqual(got, []domain.ActivityAction{domain.ActivityCreated}) {
		t.Fatalf("activity = %v", got)
	}
	entry := f.publisher.entries[0]
	if entry.TaskID != task.ID || entry.ActorID != f.owner.ID || entry.ToStatus != domain.TaskPending {
		t.Fatalf("unexpected activity %+v", entry)
	}
}

func TestTaskService_Create_Rejects(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		actor domain.Identity
		in    ports.NewTask
		want  error
	}{
		{"blank title", f.owner, ports.NewTask{Title: " ", ProjectID: f.project.ID}, domain.ErrValidation},
		{"bad status", f.owner, ports.NewTask{Title: "x", Status: "done", ProjectID: f.project.ID}, domain.ErrInvalidStatus},
		{"unknown project", f.owner, ports.NewTask{Title: "x", ProjectID: 999}, domain.ErrProjectNotFound},
		{"not the owner", f.outsider, ports.NewTask{Title: "x", ProjectID: f.project.ID}, domain.ErrNotPermitted},
		{"unknown assignee", f.owner, ports.NewTask{Title: "x", ProjectID: f.project.ID, AssignedUserID: ptr(int64(999))}, domain.ErrUserNotFound},
		{"unknown tag", f.owner, ports.NewTask{Title: "x", ProjectID: f.project.ID, TagIDs: []int64{42}}, domain.ErrTagNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, tc.actor, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(f.tasks.byID) != 0 || len(f.publisher.entries) != 0 {
		t.Fatalf("rejected creates must have no effect")
	}
}

func TestTaskService_Create_AdminAnyProject(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.svc.Create(context.Background(), f.admin, ports.NewTask{
		Title: "x", Status: string(domain.TaskInProgress), ProjectID: f.project.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != domain.TaskInProgress {
		t.Fatalf("status = %s", task.Status)
	}
}

func TestTaskService_Update_Permissions(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.owner, ports.NewTask{Title: "x", ProjectID: f.project.ID, AssignedUserID: &f.helper.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	inProgress := string(domain.TaskInProgress)
	if _, err := f.svc.Update(ctx, f.helper, task.ID, ports.TaskPatch{Status: &inProgress}); err != nil {
		t.Fatalf("assignee status change: %v", err)
	}
	if _, err := f.svc.Update(ctx, f.helper, task.ID, ports.TaskPatch{Title: ptr("renamed")}); !errors.Is(err, domain.ErrNotPermitted) {
		t.Fatalf("assignee may only change status, got %v", err)
	}
	if _, err := f.svc.Update(ctx, f.outsider, task.ID, ports.TaskPatch{Status: &inProgress}); !errors.Is(err, domain.ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted, got %v", err)
	}
	if _, err := f.svc.Update(ctx, f.admin, task.ID, ports.TaskPatch{Title: ptr("by admin")}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestTaskService_Update_Validation(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.owner, ports.NewTask{Title: "x", ProjectID: f.project.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name  string
		patch ports.TaskPatch
		want  error
	}{
		{"empty", ports.TaskPatch{}, domain.ErrEmptyPatch},
		{"blank title", ports.TaskPatch{Title: ptr("  ")}, domain.ErrValidation},
		{"bad status", ports.TaskPatch{Status: ptr("archived")}, domain.ErrInvalidStatus},
		{"unknown assignee", ports.TaskPatch{AssignedUserID: ptr(int64(999))}, domain.ErrUserNotFound},
		{"unknown tag", ports.TaskPatch{TagIDs: &[]int64{77}}, domain.ErrTagNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Update(ctx, f.owner, task.ID, tc.patch); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := f.svc.Update(ctx, f.owner, 999, ports.TaskPatch{Title: ptr("x")}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_Update_RecordsActivity(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	ui := f.tag(t, "ui")

	task, err := f.svc.Create(ctx, f.owner, ports.NewTask{Title: "x", ProjectID: f.project.ID, AssignedUserID: &f.helper.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.publisher.entries = nil

	completed := string(domain.TaskCompleted)
	updated, err := f.svc.Update(ctx, f.owner, task.ID, ports.TaskPatch{
		Status:         &completed,
		AssignedUserID: ptr(int64(0)),
		TagIDs:         &[]int64{ui},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.AssignedUserID != nil {
		t.Fatalf("assignment should be cleared")
	}
	if len(updated.Tags) != 1 || updated.Tags[0].ID != ui {
		t.Fatalf("tags = %+v", updated.Tags)
	}

	want := []domain.ActivityAction{domain.ActivityStatusChanged, domain.ActivityAssigned, domain.ActivityUpdated}
	if got := f.publisher.actions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("activity = %v, want %v", got, want)
	}
	change := f.publisher.entries[0]
	if change.FromStatus != domain.TaskPending || change.ToStatus != domain.TaskCompleted {
		t.Fatalf("unexpected transition %+v", change)
	}

	// Setting the same status again is not a transition.
	f.publisher.entries = nil
	if _, err := f.svc.Update(ctx, f.owner, task.ID, ports.TaskPatch{Status: &completed}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(f.publisher.entries) != 0 {
		t.Fatalf("no-op status update recorded %v", f.publisher.actions())
	}
}

func TestTaskService_Delete(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.Create(ctx, f.owner, ports.NewTask{Title: "x", ProjectID: f.project.ID, AssignedUserID: &f.helper.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.svc.Delete(ctx, f.helper, task.ID); !errors.Is(err, domain.ErrNotPermitted) {
		t.Fatalf("assignees cannot delete, got %v", err)
	}
	if err := f.svc.Delete(ctx, f.owner, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if last := f.publisher.entries[len(f.publisher.entries)-1]; last.Action != domain.ActivityDeleted {
		t.Fatalf("expected a deleted entry, got %s", last.Action)
	}
	if _, err := f.svc.Activity(ctx, task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_ListAndActivity(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	if _, err := f.svc.List(ctx, ports.TaskFilter{Status: "later"}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	task, err := f.svc.Create(ctx, f.owner, ports.NewTask{Title: "x", ProjectID: f.project.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tasks, err := f.svc.List(ctx, ports.TaskFilter{Status: domain.TaskPending})
	if err != nil || len(tasks) != 1 {
		t.Fatalf("List = %v, %v", tasks, err)
	}

	entries, err := f.svc.Activity(ctx, task.ID)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("discarding store should return an empty list, got %v", entries)
	}

	stats, err := f.svc.Stats(ctx, ports.TaskFilter{})
	if err != nil || stats.Total != 1 {
		t.Fatalf("Stats = %+v, %v", stats, err)
	}
}
