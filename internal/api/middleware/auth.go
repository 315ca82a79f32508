package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/api/metrics"
	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

// IdentityKey is the echo context key holding the caller's domain.Identity.
const IdentityKey = "identity"

// Auth is the access guard. It requires a valid bearer token and attaches the
// decoded identity to both the echo context and the request context. Every
// failure is a bare 401 "unauthorized".
//
// When revocations is non-nil, tokens issued at or before the user's revocation
// watermark are rejected too. A failing revocation lookup is logged and the
// request proceeds on the signature alone.
func Auth(verifier ports.TokenVerifier, revocations ports.SessionRevoker, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized("missing_header")
			}

			scheme, raw, ok := strings.Cut(authHeader, " ")
			raw = strings.TrimSpace(raw)
			if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
				return unauthorized("malformed_header")
			}

			vt, err := verifier.Verify(raw)
			if err != nil {
				return unauthorized("invalid_token")
			}

			if revocations != nil {
				ctx := c.Request().Context()
				watermark, err := revocations.RevokedBefore(ctx, vt.Identity.ID)
				switch {
				case err != nil:
					log.Warn().Err(err).Int64("user_id", vt.Identity.ID).Msg("revocation lookup failed; accepting token")
				case !watermark.IsZero() && !vt.IssuedAt.After(watermark):
					return unauthorized("revoked")
				}
			}

			c.Set(IdentityKey, vt.Identity)
			c.SetRequest(c.Request().WithContext(domain.WithIdentity(c.Request().Context(), vt.Identity)))
			return next(c)
		}
	}
}

func unauthorized(reason string) error {
	metrics.GuardRejectionsTotal.WithLabelValues(reason).Inc()
	return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
}
