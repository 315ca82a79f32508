package ports

import (
	"context"

	"github.com/taskhub/taskhub/internal/core/domain"
)

type TagRepository interface {
	// Create returns domain.ErrTagExists on a duplicate name.
	Create(ctx context.Context, tag *domain.Tag) error
	FindByID(ctx context.Context, id int64) (*domain.Tag, error)
	// CountExisting returns how many of ids exist.
	CountExisting(ctx context.Context, ids []int64) (int, error)
	List(ctx context.Context) ([]*domain.Tag, error)
	Rename(ctx context.Context, id int64, name string) (*domain.Tag, error)
	Delete(ctx context.Context, id int64) error
}

type TagService interface {
	Create(ctx context.Context, name string) (*domain.Tag, error)
	Get(ctx context.Context, id int64) (*domain.Tag, error)
	List(ctx context.Context) ([]*domain.Tag, error)
	Rename(ctx context.Context, id int64, name string) (*domain.Tag, error)
	Delete(ctx context.Context, id int64) error
}
