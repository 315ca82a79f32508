package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

type ProjectService struct {
	repo   ports.ProjectRepository
	users  ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewProjectService(repo ports.ProjectRepository, users ports.UserRepository, logger zerolog.Logger) *ProjectService {
	return &ProjectService{repo: repo, users: users, logger: logger, now: time.Now}
}

// Create makes the caller the owner. Only admins may create projects on
// behalf of another user.
func (s *ProjectService) Create(ctx context.Context, actor domain.Identity, in ports.NewProject) (*domain.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Invalid("title is required")
	}

	owner := actor.ID
	if in.OwnerID != 0 && in.OwnerID != actor.ID {
		if !actor.IsAdmin() {
			return nil, domain.ErrNotPermitted
		}
		if _, err := s.users.FindByID(ctx, in.OwnerID); err != nil {
			return nil, err
		}
		owner = in.OwnerID
	}

	p := &domain.Project{
		Title:       title,
		Description: in.Description,
		OwnerID:     owner,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("project_id", p.ID).Int64("owner_id", owner).Msg("project created")
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, filter ports.ProjectFilter) ([]*domain.Project, error) {
	return s.repo.List(ctx, filter)
}

func (s *ProjectService) Update(ctx context.Context, actor domain.Identity, id int64, patch ports.ProjectPatch) (*domain.Project, error) {
	if patch.Empty() {
		return nil, domain.ErrEmptyPatch
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, domain.Invalid("title must not be empty")
		}
		patch.Title = &title
	}
	if _, err := s.modifiable(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes the project together with its tasks.
func (s *ProjectService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	if _, err := s.modifiable(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("project_id", id).Int64("actor_id", actor.ID).Msg("project deleted")
	return nil
}

func (s *ProjectService) modifiable(ctx context.Context, actor domain.Identity, id int64) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanModify(actor) {
		return nil, domain.ErrNotPermitted
	}
	return p, nil
}
