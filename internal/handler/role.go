package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/middleware"
    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/policy"
)

// RoleStore reads and writes the user → role mapping.
type RoleStore interface {
    List(ctx context.Context, caller policy.Caller) ([]model.UserRole, error)
    Set(ctx context.Context, caller policy.Caller, userID, role string) error
}

type RoleHandler struct {
    Roles RoleStore
    Log   *zap.Logger
}

func NewRoleHandler(roles RoleStore, log *zap.Logger) *RoleHandler {
    return &RoleHandler{Roles: roles, Log: log}
}

// List handles GET /v1/roles.
func (h *RoleHandler) List(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()
    roles, err := h.Roles.List(ctx, middleware.Caller(c))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    if roles == nil {
        roles = []model.UserRole{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": roles, "count": len(roles)})
}

// Set handles PUT /v1/admin/roles/:user_id {"role": "admin"}.
func (h *RoleHandler) Set(c echo.Context) error {
    var req struct {
        Role string `json:"role"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    role := strings.ToLower(strings.TrimSpace(req.Role))
    if role != model.RoleCustomer && role != model.RoleAdmin {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be customer or admin", "field": "role"})
    }
    userID := strings.TrimSpace(c.Param("user_id"))
    ctx, cancel := requestCtx(c)
    defer cancel()
    if err := h.Roles.Set(ctx, middleware.Caller(c), userID, role); err != nil {
        return writeError(c, h.Log, err)
    }
    if h.Log != nil {
        h.Log.Info("role changed",
            zap.String("user_id", userID),
            zap.String("role", role),
            zap.String("by", middleware.Caller(c).UserID))
    }
    return c.JSON(http.StatusOK, model.UserRole{UserID: userID, Role: role})
}
