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
    "github.com/iliyamo/hotel-reservation/internal/repository"
    "github.com/iliyamo/hotel-reservation/internal/validation"
)

// RoomStore is the room catalog as used by the HTTP layer.
type RoomStore interface {
    List(ctx context.Context, caller policy.Caller, f repository.RoomFilter) ([]*model.Room, error)
    GetByID(ctx context.Context, caller policy.Caller, id string) (*model.Room, error)
    Create(ctx context.Context, caller policy.Caller, rm *model.Room) error
    Update(ctx context.Context, caller policy.Caller, rm *model.Room) error
    Delete(ctx context.Context, caller policy.Caller, id string) (int64, error)
}

// Invalidator drops cached catalog responses after a write.
type Invalidator interface {
    Invalidate(ctx context.Context)
}

type RoomHandler struct {
    Rooms RoomStore
    Cache Invalidator
    Log   *zap.Logger
}

func NewRoomHandler(rooms RoomStore, cache Invalidator, log *zap.Logger) *RoomHandler {
    return &RoomHandler{Rooms: rooms, Cache: cache, Log: log}
}

// roomReq carries create and update input.  Absent fields keep their
// current value on update.
type roomReq struct {
    Name        *string   `json:"name"`
    Type        *string   `json:"type"`
    Capacity    *int      `json:"capacity"`
    PriceCents  *int64    `json:"price_cents"`
    Status      *string   `json:"status"`
    Features    *[]string `json:"features"`
    Description *string   `json:"description"`
    ImageURL    *string   `json:"image_url"`
}

type roomRules struct {
    Name       string `validate:"required,min=2,max=100"`
    Type       string `validate:"required,lowercase,excludesall=0x20,max=32"`
    Capacity   int    `validate:"min=1"`
    PriceCents int64  `validate:"min=0"`
    Status     string `validate:"oneof=available occupied maintenance"`
    ImageURL   string `validate:"omitempty,url,max=512"`
}

var roomFields = map[string]string{
    "Name": "name", "Type": "type", "Capacity": "capacity",
    "PriceCents": "price_cents", "Status": "status", "ImageURL": "image_url",
}

var validate = validation.New()

func (r roomReq) apply(rm *model.Room) {
    if r.Name != nil {
        rm.Name = strings.TrimSpace(*r.Name)
    }
    if r.Type != nil {
        rm.Type = strings.TrimSpace(*r.Type)
    }
    if r.Capacity != nil {
        rm.Capacity = *r.Capacity
    }
    if r.PriceCents != nil {
        rm.PriceCents = *r.PriceCents
    }
    if r.Status != nil {
        rm.Status = strings.TrimSpace(*r.Status)
    }
    if r.Features != nil {
        rm.Features = make([]string, 0, len(*r.Features))
        for _, f := range *r.Features {
            if f = strings.TrimSpace(f); f != "" {
                rm.Features = append(rm.Features, f)
            }
        }
    }
    if r.Description != nil {
        rm.Description = optional(*r.Description)
    }
    if r.ImageURL != nil {
        rm.ImageURL = optional(*r.ImageURL)
    }
}

func optional(s string) *string {
    s = strings.TrimSpace(s)
    if s == "" {
        return nil
    }
    return &s
}

func validateRoom(rm *model.Room) error {
    img := ""
    if rm.ImageURL != nil {
        img = *rm.ImageURL
    }
    return validation.FromValidator(validate.Struct(roomRules{
        Name: rm.Name, Type: rm.Type, Capacity: rm.Capacity,
        PriceCents: rm.PriceCents, Status: rm.Status, ImageURL: img,
    }), roomFields)
}

// List handles GET /v1/rooms?status=&type=.
func (h *RoomHandler) List(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()
    rooms, err := h.Rooms.List(ctx, middleware.Caller(c), repository.RoomFilter{
        Status: strings.TrimSpace(c.QueryParam("status")),
        Type:   strings.TrimSpace(c.QueryParam("type")),
    })
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rooms, "count": len(rooms)})
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()
    rm, err := h.Rooms.GetByID(ctx, middleware.Caller(c), c.Param("id"))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, rm)
}

// Create handles POST /v1/admin/rooms.  Status defaults to available.
func (h *RoomHandler) Create(c echo.Context) error {
    var req roomReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    rm := &model.Room{Status: model.RoomAvailable, Features: []string{}}
    req.apply(rm)
    if err := validateRoom(rm); err != nil {
        return writeError(c, h.Log, err)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()
    if err := h.Rooms.Create(ctx, middleware.Caller(c), rm); err != nil {
        return writeError(c, h.Log, err)
    }
    h.invalidate(ctx)
    return c.JSON(http.StatusCreated, rm)
}

// Update handles PUT and PATCH /v1/admin/rooms/:id.  Only the fields
// present in the body change.
func (h *RoomHandler) Update(c echo.Context) error {
    var req roomReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()
    caller := middleware.Caller(c)
    if err := policy.WriteRooms(caller); err != nil {
        return writeError(c, h.Log, err)
    }
    rm, err := h.Rooms.GetByID(ctx, caller, c.Param("id"))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    req.apply(rm)
    if err := validateRoom(rm); err != nil {
        return writeError(c, h.Log, err)
    }
    if err := h.Rooms.Update(ctx, caller, rm); err != nil {
        return writeError(c, h.Log, err)
    }
    h.invalidate(ctx)
    if fresh, err := h.Rooms.GetByID(ctx, caller, rm.ID); err == nil {
        rm = fresh
    }
    return c.JSON(http.StatusOK, rm)
}

// Delete handles DELETE /v1/admin/rooms/:id.  Reservations that reference
// the room are removed with it.
func (h *RoomHandler) Delete(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()
    n, err := h.Rooms.Delete(ctx, middleware.Caller(c), c.Param("id"))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    h.invalidate(ctx)
    return c.JSON(http.StatusOK, echo.Map{"deleted": c.Param("id"), "reservations_deleted": n})
}

func (h *RoomHandler) invalidate(ctx context.Context) {
    if h.Cache != nil {
        h.Cache.Invalidate(ctx)
    }
}
