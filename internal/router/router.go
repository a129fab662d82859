// Package router registers the HTTP routes of the API.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-reservation/internal/handler"
    "github.com/iliyamo/hotel-reservation/internal/middleware"
)

// Guard is the authentication chain shared by every protected group:
// bearer token check, role lookup and, when configured, rate limiting.
type Guard struct {
    JWTSecret string
    Roles     middleware.RoleReader
    RateLimit echo.MiddlewareFunc
}

func (g Guard) chain(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
    mw := []echo.MiddlewareFunc{middleware.JWTAuth(g.JWTSecret), middleware.ResolveRole(g.Roles)}
    if g.RateLimit != nil {
        mw = append(mw, g.RateLimit)
    }
    return append(mw, extra...)
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc, avatarDir, avatarBaseURL string) {
    e.GET("/healthz", health)
    if avatarDir != "" {
        e.Static(avatarBaseURL, avatarDir)
    }
}

// RegisterAuth registers sign-up, sign-in, refresh and sign-out under
// /v1/auth, and the session lookup at /v1/session.  Sign-out sits outside
// the guard and reads the bearer token itself.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, guard Guard) {
    var mw []echo.MiddlewareFunc
    if guard.RateLimit != nil {
        mw = append(mw, guard.RateLimit)
    }
    g := e.Group("/v1/auth", mw...)
    g.POST("/signup", a.SignUp)
    g.POST("/signin", a.SignIn)
    g.POST("/refresh", a.Refresh)
    g.POST("/signout", a.SignOut)

    e.GET("/v1/session", a.Session, guard.chain()...)
}
