package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-reservation/internal/policy"
)

// Caller returns the authenticated identity and role set by JWTAuth and
// ResolveRole.  The zero Caller means unauthenticated.
func Caller(c echo.Context) policy.Caller {
    uid := currentUserID(c)
    role, _ := c.Get(ctxRole).(string)
    return policy.Caller{UserID: uid, Role: role}
}

// Email returns the email claim of the access token, if any.
func Email(c echo.Context) string {
    e, _ := c.Get(ctxEmail).(string)
    return e
}

func currentUserID(c echo.Context) string {
    uid, _ := c.Get(ctxUserID).(string)
    return uid
}
