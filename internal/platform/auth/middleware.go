package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	labIDKey    contextKey = "lab_id"
	labEmailKey contextKey = "lab_email"
)

// TokenMiddleware requires a valid bearer token on every request it wraps.
// On success the lab identity from the token claims is stored in the request
// context for downstream handlers.
func TokenMiddleware(issuer *Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			ctx := context.WithValue(c.Request().Context(), labIDKey, claims.LabID)
			ctx = context.WithValue(ctx, labEmailKey, claims.LabEmail)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// LabIDFromContext returns the authenticated lab id, empty when the request
// did not pass through TokenMiddleware.
func LabIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(labIDKey).(string)
	return id
}

// LabEmailFromContext returns the authenticated lab email, empty when the
// request did not pass through TokenMiddleware.
func LabEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(labEmailKey).(string)
	return email
}
