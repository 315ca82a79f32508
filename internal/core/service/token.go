package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

// tokenClaims is the signed payload: {sub, email, role} plus iat and an
// optional exp.
type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens. A zero ttl issues tokens
// without an expiry.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for id.
func (t *Tokens) Issue(id domain.Identity) (string, error) {
	return t.IssueAfter(id, time.Time{})
}

// IssueAfter signs a token for id whose iat is later than watermark. iat has
// whole-second precision and the guard rejects iat <= watermark, so a token
// issued in the same second as a revocation is stamped with the next second.
// A zero watermark means there is none.
func (t *Tokens) IssueAfter(id domain.Identity, watermark time.Time) (string, error) {
	now := t.now()
	if !watermark.IsZero() && !now.Truncate(time.Second).After(watermark) {
		now = watermark.Truncate(time.Second).Add(time.Second)
	}
	claims := tokenClaims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(id.ID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks the signature, algorithm and expiry of raw and decodes its claims.
func (t *Tokens) Verify(raw string) (*ports.VerifiedToken, error) {
	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tkn.Valid {
		return nil, errors.Join(domain.ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, domain.ErrInvalidToken
	}
	if !domain.ValidRole(claims.Role) {
		return nil, domain.ErrInvalidToken
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return &ports.VerifiedToken{
		Identity: domain.Identity{ID: id, Email: claims.Email, Role: claims.Role},
		IssuedAt: issuedAt,
	}, nil
}
