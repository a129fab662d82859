package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/auth"
    "github.com/iliyamo/hotel-reservation/internal/booking"
    "github.com/iliyamo/hotel-reservation/internal/policy"
    "github.com/iliyamo/hotel-reservation/internal/repository"
    "github.com/iliyamo/hotel-reservation/internal/storage"
    "github.com/iliyamo/hotel-reservation/internal/validation"
)

// writeError maps domain and persistence errors to HTTP responses.  Anything
// unrecognised is logged and answered with a generic 500 so driver messages
// never reach clients.
func writeError(c echo.Context, log *zap.Logger, err error) error {
    var (
        ve  *validation.Error
        ce  *booking.CapacityExceededError
        ue  *booking.UnavailableError
        ite *booking.InvalidTransitionError
        ae  *auth.Error
    )
    switch {
    case errors.As(err, &ve):
        body := echo.Map{"error": ve.Error()}
        if ve.Field != "" {
            body["field"] = ve.Field
        }
        return c.JSON(http.StatusBadRequest, body)
    case errors.Is(err, booking.ErrEmptyCart):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, booking.ErrInvalidDateRange), errors.Is(err, booking.ErrCheckInPast):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
    case errors.As(err, &ce):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": ce.Error(), "max_guests": ce.Max})
    case errors.As(err, &ue):
        return c.JSON(http.StatusConflict, echo.Map{"error": ue.Error(), "room_id": ue.RoomID})
    case errors.Is(err, booking.ErrAlreadyStarted):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.As(err, &ite):
        return c.JSON(http.StatusConflict, echo.Map{"error": ite.Error(), "status": ite.From})
    case errors.As(err, &ae):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": ae.Message})
    case errors.Is(err, policy.ErrUnauthenticated):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    case errors.Is(err, repository.ErrEmailExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    case errors.Is(err, policy.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, storage.ErrTooLarge):
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file must be at most 2 MB"})
    case errors.Is(err, storage.ErrNotImage):
        return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "only image files are accepted"})
    }
    if log != nil {
        log.Error("request failed", zap.String("route", c.Path()), zap.Error(err))
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
