package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// RequestLogger writes one zap entry per request.  5xx responses are
// logged at error level, 4xx at warn, everything else at info.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            req, res := c.Request(), c.Response()
            fields := []zap.Field{
                zap.String("method", req.Method),
                zap.String("route", c.Path()),
                zap.String("uri", req.RequestURI),
                zap.Int("status", res.Status),
                zap.Int64("bytes", res.Size),
                zap.Duration("latency", time.Since(start)),
                zap.String("remote_ip", c.RealIP()),
                zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
            }
            if uid := currentUserID(c); uid != "" {
                fields = append(fields, zap.String("user_id", uid))
            }
            if err != nil {
                fields = append(fields, zap.Error(err))
            }
            switch {
            case res.Status >= 500:
                log.Error("request", fields...)
            case res.Status >= 400:
                log.Warn("request", fields...)
            default:
                log.Info("request", fields...)
            }
            return nil
        }
    }
}
