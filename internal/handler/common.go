package handler

import (
    "context"
    "time"

    "github.com/labstack/echo/v4"
)

// dbTimeout bounds every storage call made on behalf of a request.
const dbTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}
