package middleware

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
)

// RoleReader resolves the role of a user.  Implementations never fail;
// they fall back to the customer role.
type RoleReader interface {
    GetRole(ctx context.Context, userID string) string
}

// ResolveRole looks up the caller's role on every request and stores it
// under "role".  It must run after JWTAuth.
func ResolveRole(roles RoleReader) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if uid := currentUserID(c); uid != "" {
                c.Set(ctxRole, roles.GetRole(c.Request().Context(), uid))
            }
            return next(c)
        }
    }
}

// RequireRole aborts with 403 unless the resolved role is one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[strings.ToLower(r)] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, _ := c.Get(ctxRole).(string)
            if !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
