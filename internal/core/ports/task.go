package ports

import (
	"context"

	"github.com/taskhub/taskhub/internal/core/domain"
)

// NewTask carries the fields needed to create a task.
type NewTask struct {
	Title          string
	Description    string
	Status         string // empty = pending
	ProjectID      int64
	AssignedUserID *int64
	TagIDs         []int64
}

// TaskPatch enumerates the settable task fields. A non-nil AssignedUserID of 0
// clears the assignment; a non-nil TagIDs replaces the whole tag set.
type TaskPatch struct {
	Title          *string
	Description    *string
	Status         *string
	AssignedUserID *int64
	TagIDs         *[]int64
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.AssignedUserID == nil && p.TagIDs == nil
}

// OnlyStatus reports whether the patch touches nothing but the status.
func (p TaskPatch) OnlyStatus() bool {
	return p.Status != nil && p.Title == nil && p.Description == nil &&
		p.AssignedUserID == nil && p.TagIDs == nil
}

// TaskFilter narrows task listings. Zero values mean no filter.
type TaskFilter struct {
	ProjectID      int64
	Status         domain.TaskStatus
	AssignedUserID int64
	TagID          int64
	Search         string
	// VisibleTo restricts results to tasks in projects owned by, or assigned
	// to, the given user.
	VisibleTo int64
}

type TaskRepository interface {
	// Create inserts the task and its tag links atomically.
	Create(ctx context.Context, t *domain.Task, tagIDs []int64) error
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, id int64, patch TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, filter TaskFilter) (*domain.TaskStats, error)
}

type TaskService interface {
	Create(ctx context.Context, actor domain.Identity, in NewTask) (*domain.Task, error)
	Get(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, actor domain.Identity, id int64, patch TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, actor domain.Identity, id int64) error
	Stats(ctx context.Context, filter TaskFilter) (*domain.TaskStats, error)
	Activity(ctx context.Context, id int64) ([]domain.TaskActivity, error)
}
