package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/booking"
    "github.com/iliyamo/hotel-reservation/internal/middleware"
    "github.com/iliyamo/hotel-reservation/internal/service"
)

// CartHandler serves the booking cart and stay quotes.
type CartHandler struct {
    Carts        *service.CartService
    Reservations *service.ReservationService
    Log          *zap.Logger
}

func NewCartHandler(carts *service.CartService, reservations *service.ReservationService, log *zap.Logger) *CartHandler {
    return &CartHandler{Carts: carts, Reservations: reservations, Log: log}
}

type cartResp struct {
    Items            []booking.CartItem `json:"items"`
    TotalCapacity    int                `json:"total_capacity"`
    NightlyRateCents int64              `json:"nightly_rate_cents"`
}

func toCartResp(c *booking.Cart) cartResp {
    items := c.Items
    if items == nil {
        items = []booking.CartItem{}
    }
    return cartResp{Items: items, TotalCapacity: c.TotalCapacity(), NightlyRateCents: c.NightlyRate()}
}

// Get handles GET /v1/cart.
func (h *CartHandler) Get(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()
    cart, err := h.Carts.Get(ctx, middleware.Caller(c))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, toCartResp(cart))
}

// AddRoom handles POST /v1/cart/rooms {"room_id": "..."}.
func (h *CartHandler) AddRoom(c echo.Context) error {
    var req struct {
        RoomID string `json:"room_id"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.RoomID) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required", "field": "room_id"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()
    cart, err := h.Carts.AddRoom(ctx, middleware.Caller(c), strings.TrimSpace(req.RoomID))
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, toCartResp(cart))
}

// RemoveRoom handles DELETE /v1/cart/rooms/:index.
func (h *CartHandler) RemoveRoom(c echo.Context) error {
    idx, err := strconv.Atoi(c.Param("index"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid index"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()
    cart, err := h.Carts.RemoveRoom(ctx, middleware.Caller(c), idx)
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, toCartResp(cart))
}

// Clear handles DELETE /v1/cart.
func (h *CartHandler) Clear(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()
    if err := h.Carts.Clear(ctx, middleware.Caller(c)); err != nil {
        return writeError(c, h.Log, err)
    }
    return c.NoContent(http.StatusNoContent)
}

type stayReq struct {
    CheckIn  string `json:"check_in"`
    CheckOut string `json:"check_out"`
    Guests   int    `json:"guests"`
}

// Quote handles POST /v1/cart/quote and prices the cart without booking.
func (h *CartHandler) Quote(c echo.Context) error {
    var req stayReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()
    q, err := h.Reservations.Quote(ctx, middleware.Caller(c), service.StayRequest{
        CheckIn: req.CheckIn, CheckOut: req.CheckOut, Guests: req.Guests,
    })
    if err != nil {
        return writeError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, q)
}
