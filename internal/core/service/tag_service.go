package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

type TagService struct {
	repo   ports.TagRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewTagService(repo ports.TagRepository, logger zerolog.Logger) *TagService {
	return &TagService{repo: repo, logger: logger, now: time.Now}
}

func (s *TagService) Create(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	tag := &domain.Tag{Name: name, CreatedAt: s.now().UTC()}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("tag_id", tag.ID).Str("name", name).Msg("tag created")
	return tag, nil
}

func (s *TagService) Get(ctx context.Context, id int64) (*domain.Tag, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	return s.repo.List(ctx)
}

// Rename fails with domain.ErrTagExists when another tag already has name.
func (s *TagService) Rename(ctx context.Context, id int64, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	return s.repo.Rename(ctx, id, name)
}

func (s *TagService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("tag_id", id).Msg("tag deleted")
	return nil
}
