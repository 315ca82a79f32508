package ports

import (
	"context"

	"github.com/taskhub/taskhub/internal/core/domain"
)

// UserService covers account management beyond registration and login.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, actor domain.Identity, id int64) (*domain.User, error)
	Update(ctx context.Context, actor domain.Identity, id int64, patch UserPatch) (*domain.User, error)
	ChangeRole(ctx context.Context, actor domain.Identity, id int64, role string) (*domain.User, error)
	ChangePassword(ctx context.Context, actor domain.Identity, id int64, current, next string) (*AuthResult, error)
	Delete(ctx context.Context, actor domain.Identity, id int64) error
}
