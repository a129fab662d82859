package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/auth"
    "github.com/iliyamo/hotel-reservation/internal/middleware"
)

// AuthHandler exposes the identity provider over HTTP.
type AuthHandler struct {
    Auth *auth.Provider
    Log  *zap.Logger
}

func NewAuthHandler(p *auth.Provider, log *zap.Logger) *AuthHandler {
    return &AuthHandler{Auth: p, Log: log}
}

type signUpReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
    Name     string `json:"name"`
}

type signInReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type signOutReq struct {
    RefreshToken string `json:"refresh_token"`
    All          bool   `json:"all"`
}

// SignUp handles POST /v1/auth/signup.
func (h *AuthHandler) SignUp(c echo.Context) error {
    var req signUpReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()
    s, err := h.Auth.SignUp(ctx, req.Email, req.Password, req.Name)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, s)
}

// SignIn handles POST /v1/auth/signin.
func (h *AuthHandler) SignIn(c echo.Context) error {
    var req signInReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()
    s, err := h.Auth.SignIn(ctx, req.Email, req.Password)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, s)
}

// Refresh handles POST /v1/auth/refresh and rotates the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()
    s, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, s)
}

// SignOut handles POST /v1/auth/signout.  With "all": true and a valid
// access token every session of the user is revoked; otherwise the given
// refresh token is.
func (h *AuthHandler) SignOut(c echo.Context) error {
    var req signOutReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    userID := ""
    if raw := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer "); raw != "" {
        if s := h.Auth.CurrentSession(ctx, raw); s != nil {
            userID = s.User.ID
        }
    }
    if req.All && userID == "" {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access token required to sign out everywhere"})
    }
    if err := h.Auth.SignOut(ctx, userID, strings.TrimSpace(req.RefreshToken), req.All); err != nil {
        return writeError(c, h.Log, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Session handles GET /v1/session and returns the caller's identity with
// the role currently held in the role store.
func (h *AuthHandler) Session(c echo.Context) error {
    caller := middleware.Caller(c)
    return c.JSON(http.StatusOK, auth.User{ID: caller.UserID, Email: middleware.Email(c), Role: caller.Role})
}
