package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusmind/campusmind/server/auth"
	"github.com/campusmind/campusmind/store"
)

// ContextKeyUser is the echo context key holding the authenticated *store.User.
const ContextKeyUser = "auth-user"

// JWTAuth validates the bearer token and loads the account into the
// request context. Inactive accounts are rejected.
func JWTAuth(secret string, s *store.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			claims, err := auth.VerifyToken(secret, token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			user, err := s.GetUser(c.Request().Context(), &store.FindUser{ID: &claims.UserID})
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown account")
			}
			if !user.IsActive {
				return echo.NewHTTPError(http.StatusUnauthorized, "account disabled")
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// UserFromContext returns the authenticated user set by JWTAuth.
func UserFromContext(c echo.Context) *store.User {
	user, _ := c.Get(ContextKeyUser).(*store.User)
	return user
}

// RequireRole rejects requests whose account lacks one of the given roles.
func RequireRole(roles ...store.UserRole) echo.MiddlewareFunc {
	allowed := make(map[store.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFromContext(c)
			if user == nil || !allowed[user.Role] {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
