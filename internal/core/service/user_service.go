package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

type UserService struct {
	repo    ports.UserRepository
	tokens  *Tokens
	revoker ports.SessionRevoker
	logger  zerolog.Logger
	now     func() time.Time
}

func NewUserService(repo ports.UserRepository, tokens *Tokens, revoker ports.SessionRevoker, logger zerolog.Logger) *UserService {
	if revoker == nil {
		revoker = NoRevocations{}
	}
	return &UserService{repo: repo, tokens: tokens, revoker: revoker, logger: logger, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// Get returns a user to that user or to an admin.
func (s *UserService) Get(ctx context.Context, actor domain.Identity, id int64) (*domain.User, error) {
	if !selfOrAdmin(actor, id) {
		return nil, domain.ErrNotPermitted
	}
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) Update(ctx context.Context, actor domain.Identity, id int64, patch ports.UserPatch) (*domain.User, error) {
	if !selfOrAdmin(actor, id) {
		return nil, domain.ErrNotPermitted
	}
	if patch.Empty() {
		return nil, domain.ErrEmptyPatch
	}
	if patch.Email != nil {
		email := normaliseEmail(*patch.Email)
		if email == "" {
			return nil, domain.Invalid("email must not be empty")
		}
		patch.Email = &email
	}

	user, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("user profile updated")
	return user, nil
}

// ChangeRole sets a user's role and revokes the sessions that still carry the
// old one.
func (s *UserService) ChangeRole(ctx context.Context, actor domain.Identity, id int64, role string) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrNotPermitted
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	s.revoke(ctx, id, "role_changed")
	s.logger.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Str("role", role).Msg("user role changed")
	return user, nil
}

// ChangePassword is self-service only. Older sessions are revoked and a fresh
// token is returned so the caller stays signed in.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Identity, id int64, current, next string) (*ports.AuthResult, error) {
	if actor.ID != id {
		return nil, domain.ErrNotPermitted
	}

	hash, err := s.repo.PasswordHash(ctx, id)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return nil, domain.ErrWrongPassword
	}

	newHash, err := hashPassword(next)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, newHash); err != nil {
		return nil, err
	}
	revokedAt := s.revoke(ctx, id, "password_changed")

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.IssueAfter(user.Identity(), revokedAt)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("password changed")
	return &ports.AuthResult{AccessToken: token, User: user}, nil
}

// Delete removes an account. Admins cannot remove themselves.
func (s *UserService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	if !actor.IsAdmin() {
		return domain.ErrNotPermitted
	}
	if actor.ID == id {
		return domain.ErrCannotDeleteSelf
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.revoke(ctx, id, "deleted")
	s.logger.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("user deleted")
	return nil
}

// revoke failures are logged, not returned: the store change already happened
// and tokens still expire on their own. It returns the watermark in effect.
func (s *UserService) revoke(ctx context.Context, id int64, reason string) time.Time {
	at := s.now()
	watermark, err := s.revoker.RevokeSessions(ctx, id, at)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", id).Str("reason", reason).Msg("failed to revoke sessions")
		return at
	}
	return watermark
}

func selfOrAdmin(actor domain.Identity, id int64) bool {
	return actor.IsAdmin() || actor.ID == id
}
