package middleware // middleware provides shared request processing for handlers

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-reservation/internal/utils"
)

// Context keys set by the authentication chain.
const (
    ctxUserID = "user_id"
    ctxEmail  = "email"
    ctxRole   = "role"
)

// JWTAuth validates a Bearer access token and stores its subject and email
// in the context under "user_id" and "email".  The role claim in the token
// is ignored; ResolveRole reads the authoritative value.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            c.Set(ctxUserID, claims.UserID)
            c.Set(ctxEmail, claims.Email)
            return next(c)
        }
    }
}
