package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/taskhub/internal/api/metrics"
	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

// bcryptCost is the fixed work factor for stored password hashes.
const bcryptCost = 10

// dummyHash is compared against when an email is unknown, so a miss costs the
// same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("taskhub-timing-equaliser"), bcryptCost)

// AuthService is the Authenticator: credential checks, registration and token issuance.
type AuthService struct {
	repo           ports.UserRepository
	tokens         *Tokens
	activationCode string
	revocations    ports.SessionRevoker
	logger         zerolog.Logger
	now            func() time.Time
}

func NewAuthService(repo ports.UserRepository, tokens *Tokens, activationCode string, logger zerolog.Logger) *AuthService {
	return &AuthService{
		repo:           repo,
		tokens:         tokens,
		activationCode: activationCode,
		revocations:    NoRevocations{},
		logger:         logger,
		now:            time.Now,
	}
}

// WithRevocations makes issued tokens postdate the user's revocation
// watermark. A nil r leaves the service without one.
func (s *AuthService) WithRevocations(r ports.SessionRevoker) *AuthService {
	if r != nil {
		s.revocations = r
	}
	return s
}

// ValidateCredentials returns the matching identity, or nil when the email is
// unknown or the password is wrong. The error is reserved for store failures.
func (s *AuthService) ValidateCredentials(ctx context.Context, email, password string) (*domain.Identity, error) {
	cred, err := s.repo.FindCredentials(ctx, normaliseEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	id := cred.User.Identity()
	return &id, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	id, err := s.ValidateCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if id == nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByID(ctx, id.ID)
	if err != nil {
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	return s.issue(ctx, user)
}

// Register checks, in order: password confirmation, email uniqueness, then
// the admin activation code. A successful registration is also a login.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if in.Password != in.ConfirmPassword {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "password_mismatch").Inc()
		return nil, domain.ErrPasswordMismatch
	}

	email := normaliseEmail(in.Email)
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
		return nil, domain.ErrEmailTaken
	}

	role := domain.RoleUser
	if in.Role == domain.RoleAdmin {
		if !s.activationCodeMatches(in.AdminCode) {
			metrics.AuthAttemptsTotal.WithLabelValues("register", "bad_activation_code").Inc()
			s.logger.Warn().Str("email", email).Msg("admin registration with invalid activation code")
			return nil, domain.ErrInvalidActivationCode
		}
		role = domain.RoleAdmin
	}

	cred, err := s.create(ctx, email, in.Password, role)
	if errors.Is(err, domain.ErrUserExists) {
		// Lost an insert race with another registration for the same email.
		metrics.AuthAttemptsTotal.WithLabelValues("register", "conflict").Inc()
		return nil, domain.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	s.logger.Info().Int64("user_id", cred.ID).Str("role", role).Msg("user registered")
	return s.issue(ctx, &cred.User)
}

// Provision creates an account with an explicit role, bypassing the activation
// code. It backs the operator CLI and is never routed over HTTP.
func (s *AuthService) Provision(ctx context.Context, email, password, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	cred, err := s.create(ctx, normaliseEmail(email), password, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", cred.ID).Str("role", role).Msg("user provisioned")
	return &cred.User, nil
}

func (s *AuthService) create(ctx context.Context, email, password, role string) (*domain.Credential, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	cred := &domain.Credential{
		User: domain.User{
			Email:     email,
			Role:      role,
			CreatedAt: s.now().UTC(),
		},
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, cred); err != nil {
		return nil, err
	}
	return cred, nil
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*ports.AuthResult, error) {
	watermark, err := s.revocations.RevokedBefore(ctx, user.ID)
	if err != nil {
		// The guard fails open on the same lookup, so the token is still usable.
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("revocation lookup failed")
		watermark = time.Time{}
	}
	token, err := s.tokens.IssueAfter(user.Identity(), watermark)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{AccessToken: token, User: user}, nil
}

func (s *AuthService) activationCodeMatches(code string) bool {
	if s.activationCode == "" || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(s.activationCode)) == 1
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword is shared with the user service.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
