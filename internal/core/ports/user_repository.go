package ports

import (
	"context"

	"github.com/taskhub/taskhub/internal/core/domain"
)

// UserPatch enumerates the profile fields a user may change. Nil means unchanged.
type UserPatch struct {
	Email        *string
	ProfilePhoto *string
}

// Empty reports whether the patch sets nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.ProfilePhoto == nil
}

// UserRepository is the Credential Store: one row per user keyed by unique email.
// Reads other than FindCredentials and PasswordHash never load the hash.
type UserRepository interface {
	// Create inserts the record and fills in its ID and CreatedAt.
	// Returns domain.ErrUserExists on a duplicate email.
	Create(ctx context.Context, cred *domain.Credential) error
	FindCredentials(ctx context.Context, email string) (*domain.Credential, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	PasswordHash(ctx context.Context, id int64) (string, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id int64, patch UserPatch) (*domain.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	// Delete removes the user; owned projects and their tasks cascade.
	Delete(ctx context.Context, id int64) error
}
