package ports

import (
	"context"
	"time"

	"github.com/taskhub/taskhub/internal/core/domain"
)

// RegisterInput carries a registration request after boundary validation.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	AdminCode       string
}

// AuthResult is returned by every successful login or registration.
type AuthResult struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// VerifiedToken is a decoded, signature-checked session token.
type VerifiedToken struct {
	Identity domain.Identity
	IssuedAt time.Time
}

// TokenVerifier checks a bearer token without touching the Credential Store.
type TokenVerifier interface {
	Verify(raw string) (*VerifiedToken, error)
}

// SessionRevoker records per-user watermarks; tokens issued at or before a user's
// watermark are no longer accepted.
type SessionRevoker interface {
	// RevokeSessions moves the user's watermark to at, or past the current
	// one if that is not earlier than at, and returns the watermark written.
	RevokeSessions(ctx context.Context, userID int64, at time.Time) (time.Time, error)
	// RevokedBefore returns the zero time when the user has no watermark.
	RevokedBefore(ctx context.Context, userID int64) (time.Time, error)
}
