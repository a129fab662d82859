package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/config"
)

// ResponseCache caches successful GET responses in Redis.  It is mounted on
// the room catalog listing; room writes call Invalidate so that customers
// never see a deleted or repriced room for longer than one request.
type ResponseCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
    log *zap.Logger
}

func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) *ResponseCache {
    if log == nil {
        log = zap.NewNop()
    }
    return &ResponseCache{cfg: cfg, rdb: rdb, log: log}
}

func (rc *ResponseCache) enabled() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

type cachedResponse struct {
    Status      int    `json:"status"`
    ContentType string `json:"content_type"`
    Body        []byte `json:"body"`
}

// captureWriter tees the body into buf up to limit bytes.  overflow is set
// once the body exceeds limit; such responses are not cached.
type captureWriter struct {
    http.ResponseWriter
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (w *captureWriter) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.overflow = true
            w.buf.Reset()
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

func (rc *ResponseCache) key(c echo.Context) string {
    sum := sha1.Sum([]byte(c.Request().URL.Path + "?" + c.Request().URL.RawQuery))
    return fmt.Sprintf("%s:%x", rc.cfg.Prefix, sum[:])
}

// Middleware serves cached bodies with X-Cache: HIT and stores 200
// responses on a miss.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        if !rc.enabled() {
            return next
        }
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            key := rc.key(c)

            if raw, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
                var cr cachedResponse
                if json.Unmarshal(raw, &cr) == nil {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(cr.Status, cr.ContentType, cr.Body)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, limit: rc.cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if c.Response().Status != http.StatusOK || cw.overflow {
                return nil
            }
            payload, err := json.Marshal(cachedResponse{
                Status:      http.StatusOK,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        cw.buf.Bytes(),
            })
            if err == nil {
                if err := rc.rdb.Set(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err(); err != nil {
                    rc.log.Warn("cache store failed", zap.String("key", key), zap.Error(err))
                }
            }
            return nil
        }
    }
}

// Invalidate drops every cached entry under the configured prefix.
func (rc *ResponseCache) Invalidate(ctx context.Context) {
    if !rc.enabled() {
        return
    }
    iter := rc.rdb.Scan(ctx, 0, rc.cfg.Prefix+":*", 100).Iterator()
    var keys []string
    for iter.Next(ctx) {
        keys = append(keys, iter.Val())
    }
    if err := iter.Err(); err != nil {
        rc.log.Warn("cache scan failed", zap.Error(err))
        return
    }
    if len(keys) > 0 {
        if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
            rc.log.Warn("cache invalidate failed", zap.Error(err))
        }
    }
}
