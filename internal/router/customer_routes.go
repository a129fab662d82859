package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-reservation/internal/handler"
)

// CustomerHandlers groups the handlers served to any signed-in user.
type CustomerHandlers struct {
    Rooms        *handler.RoomHandler
    Cart         *handler.CartHandler
    Reservations *handler.ReservationHandler
    Profile      *handler.ProfileHandler
    Roles        *handler.RoleHandler
}

// RegisterCustomer registers the browse, cart, checkout, role listing and
// profile endpoints under /v1.  Every route requires a valid access token; row
// ownership is enforced further down.  roomCache, when non-nil, wraps the
// room catalog reads.
func RegisterCustomer(e *echo.Echo, h CustomerHandlers, guard Guard, roomCache echo.MiddlewareFunc) {
    g := e.Group("/v1", guard.chain()...)

    var cached []echo.MiddlewareFunc
    if roomCache != nil {
        cached = append(cached, roomCache)
    }
    g.GET("/rooms", h.Rooms.List, cached...)
    g.GET("/rooms/:id", h.Rooms.Get, cached...)

    g.GET("/cart", h.Cart.Get)
    g.POST("/cart/rooms", h.Cart.AddRoom)
    g.DELETE("/cart/rooms/:index", h.Cart.RemoveRoom)
    g.DELETE("/cart", h.Cart.Clear)
    g.POST("/cart/quote", h.Cart.Quote)

    g.POST("/reservations", h.Reservations.Create)
    g.GET("/reservations", h.Reservations.ListMine)
    g.GET("/reservations/:id", h.Reservations.Get)
    g.POST("/reservations/:id/cancel", h.Reservations.Cancel)

    g.GET("/roles", h.Roles.List)

    g.GET("/profile", h.Profile.Get)
    g.PATCH("/profile", h.Profile.Update)
    g.PUT("/profile/avatar", h.Profile.UploadAvatar)
    g.DELETE("/profile/avatar", h.Profile.DeleteAvatar)
}
