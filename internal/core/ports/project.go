package ports

import (
	"context"

	"github.com/taskhub/taskhub/internal/core/domain"
)

// NewProject carries the fields needed to create a project.
// OwnerID zero means "the caller".
type NewProject struct {
	Title       string
	Description string
	OwnerID     int64
}

// ProjectPatch enumerates the settable project fields.
type ProjectPatch struct {
	Title       *string
	Description *string
}

func (p ProjectPatch) Empty() bool {
	return p.Title == nil && p.Description == nil
}

// ProjectFilter narrows project listings. Zero values mean no filter.
type ProjectFilter struct {
	OwnerID int64
}

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*domain.Project, error)
	Update(ctx context.Context, id int64, patch ProjectPatch) (*domain.Project, error)
	// Delete removes the project and, by cascade, its tasks.
	Delete(ctx context.Context, id int64) error
}

type ProjectService interface {
	Create(ctx context.Context, actor domain.Identity, in NewProject) (*domain.Project, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*domain.Project, error)
	Update(ctx context.Context, actor domain.Identity, id int64, patch ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, actor domain.Identity, id int64) error
}
