package handler

import (
    "context"
    "io"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/middleware"
    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/policy"
    "github.com/iliyamo/hotel-reservation/internal/validation"
)

// ProfileStore is the profile table as used by the HTTP layer.
type ProfileStore interface {
    Get(ctx context.Context, caller policy.Caller, id string) (*model.Profile, error)
    Update(ctx context.Context, caller policy.Caller, id, name string, phone *string) error
    SetAvatar(ctx context.Context, caller policy.Caller, id string, url *string) error
}

// AvatarStore keeps avatar image files.
type AvatarStore interface {
    Put(ctx context.Context, caller policy.Caller, r io.Reader) (string, error)
    Prune(ctx context.Context, caller policy.Caller, keep string) error
    Remove(ctx context.Context, caller policy.Caller, object string) error
    Delete(ctx context.Context, caller policy.Caller) error
    PublicURL(object string) string
}

type ProfileHandler struct {
    Profiles ProfileStore
    Avatars  AvatarStore
    Log      *zap.Logger
}

func NewProfileHandler(profiles ProfileStore, avatars AvatarStore, log *zap.Logger) *ProfileHandler {
    return &ProfileHandler{Profiles: profiles, Avatars: avatars, Log: log}
}

type profileRules struct {
    Name  string `validate:"required,min=2,max=100"`
    Phone string `validate:"omitempty,min=10,max=32"`
}

var profileFields = map[string]string{"Name": "name", "Phone": "phone"}

// Get handles GET /v1/profile.
func (h *ProfileHandler) Get(c echo.Context) error {
    caller := middleware.Caller(c)
    ctx, cancel := requestCtx(c)
    defer cancel()
    p, err := h.Profiles.Get(ctx, caller, caller.UserID)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, p)
}

// Update handles PATCH /v1/profile.  An empty phone clears it; an absent
// field keeps the stored value.
func (h *ProfileHandler) Update(c echo.Context) error {
    var req struct {
        Name  *string `json:"name"`
        Phone *string `json:"phone"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    caller := middleware.Caller(c)
    ctx, cancel := requestCtx(c)
    defer cancel()

    cur, err := h.Profiles.Get(ctx, caller, caller.UserID)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    name := cur.Name
    if req.Name != nil {
        name = strings.TrimSpace(*req.Name)
    }
    phone := cur.Phone
    if req.Phone != nil {
        phone = optional(*req.Phone)
    }
    rules := profileRules{Name: name}
    if phone != nil {
        rules.Phone = *phone
    }
    if err := validation.FromValidator(validate.Struct(rules), profileFields); err != nil {
        return writeError(c, h.Log, err)
    }
    if err := h.Profiles.Update(ctx, caller, caller.UserID, name, phone); err != nil {
        return writeError(c, h.Log, err)
    }
    cur.Name, cur.Phone = name, phone
    return c.JSON(http.StatusOK, cur)
}

// UploadAvatar handles PUT /v1/profile/avatar with a multipart "file" field.
// The previous avatar is removed only after the profile points at the new
// one; if the profile update fails the new file is dropped instead.
func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
    fh, err := c.FormFile("file")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required", "field": "file"})
    }
    f, err := fh.Open()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read upload"})
    }
    defer f.Close()

    caller := middleware.Caller(c)
    ctx, cancel := requestCtx(c)
    defer cancel()
    object, err := h.Avatars.Put(ctx, caller, f)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    url := h.Avatars.PublicURL(object)
    if err := h.Profiles.SetAvatar(ctx, caller, caller.UserID, &url); err != nil {
        if rmErr := h.Avatars.Remove(context.WithoutCancel(ctx), caller, object); rmErr != nil && h.Log != nil {
            h.Log.Warn("orphaned avatar not removed", zap.String("object", object), zap.Error(rmErr))
        }
        return writeError(c, h.Log, err)
    }
    if err := h.Avatars.Prune(ctx, caller, object); err != nil && h.Log != nil {
        h.Log.Warn("previous avatars not pruned", zap.String("user_id", caller.UserID), zap.Error(err))
    }
    return c.JSON(http.StatusOK, echo.Map{"avatar_url": url})
}

// DeleteAvatar handles DELETE /v1/profile/avatar.  The profile is cleared
// first so it never points at a removed file.
func (h *ProfileHandler) DeleteAvatar(c echo.Context) error {
    caller := middleware.Caller(c)
    ctx, cancel := requestCtx(c)
    defer cancel()
    if err := h.Profiles.SetAvatar(ctx, caller, caller.UserID, nil); err != nil {
        return writeError(c, h.Log, err)
    }
    if err := h.Avatars.Delete(ctx, caller); err != nil {
        return writeError(c, h.Log, err)
    }
    return c.NoContent(http.StatusNoContent)
}
