package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// Health reports liveness and whether the database answers.  It returns
// 503 when the database ping fails so load balancers can drain the node.
func Health(db Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        if db == nil {
            return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
        }
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := db.PingContext(ctx); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "database": "down"})
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ok", "database": "up"})
    }
}
