package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-reservation/internal/handler"
    "github.com/iliyamo/hotel-reservation/internal/middleware"
    "github.com/iliyamo/hotel-reservation/internal/model"
)

// AdminHandlers groups the handlers behind the admin role.
type AdminHandlers struct {
    Rooms        *handler.RoomHandler
    Reservations *handler.ReservationHandler
    Roles        *handler.RoleHandler
}

// RegisterAdmin registers catalog management, the reservation back office
// and role assignment under /v1/admin.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, guard Guard) {
    g := e.Group("/v1/admin", guard.chain(middleware.RequireRole(model.RoleAdmin))...)

    g.POST("/rooms", h.Rooms.Create)
    g.PUT("/rooms/:id", h.Rooms.Update)
    g.PATCH("/rooms/:id", h.Rooms.Update)
    g.DELETE("/rooms/:id", h.Rooms.Delete)

    g.GET("/reservations", h.Reservations.ListAll)
    g.POST("/reservations/:id/confirm", h.Reservations.Confirm)
    g.POST("/reservations/:id/cancel", h.Reservations.AdminCancel)
    g.POST("/reservations/:id/complete", h.Reservations.Complete)

    g.PUT("/roles/:user_id", h.Roles.Set)
}
