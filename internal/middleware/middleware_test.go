package middleware

import (
    "context"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zaptest/observer"

    "github.com/iliyamo/hotel-reservation/internal/config"
    "github.com/iliyamo/hotel-reservation/internal/model"
    "github.com/iliyamo/hotel-reservation/internal/utils"
)

const secret = "test-secret"

type fixedRoles map[string]string

func (r fixedRoles) GetRole(_ context.Context, userID string) string {
    if role, ok := r[userID]; ok {
        return role
    }
    return model.RoleCustomer
}

func bearer(t *testing.T, userID, claimedRole string) string {
    tok, err := utils.NewAccessToken(secret, userID, userID+"@example.com", claimedRole, 5)
    require.NoError(t, err)
    return "Bearer " + tok.Token
}

func newServer(mw ...echo.MiddlewareFunc) *echo.Echo {
    e := echo.New()
    e.GET("/whoami", func(c echo.Context) error {
        caller := Caller(c)
        return c.JSON(http.StatusOK, echo.Map{"user_id": caller.UserID, "role": caller.Role, "email": Email(c)})
    }, mw...)
    return e
}

func do(e *echo.Echo, auth string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
    if auth != "" {
        req.Header.Set(echo.HeaderAuthorization, auth)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuth(t *testing.T) {
    e := newServer(JWTAuth(secret), ResolveRole(fixedRoles{}))

    assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
    assert.Equal(t, http.StatusUnauthorized, do(e, "Bearer junk").Code)

    rec := do(e, bearer(t, "user-1", "customer"))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"user_id":"user-1","role":"customer","email":"user-1@example.com"}`, rec.Body.String())
}

func TestRoleComesFromStoreNotToken(t *testing.T) {
    e := newServer(JWTAuth(secret), ResolveRole(fixedRoles{"boss": model.RoleAdmin}), RequireRole("ADMIN"))

    assert.Equal(t, http.StatusForbidden, do(e, bearer(t, "user-1", "admin")).Code)
    assert.Equal(t, http.StatusOK, do(e, bearer(t, "boss", "customer")).Code)
}

func TestRequireRoleWithoutResolution(t *testing.T) {
    e := newServer(RequireRole(model.RoleCustomer))
    assert.Equal(t, http.StatusForbidden, do(e, "").Code)
}

func TestRequestLogger(t *testing.T) {
    core, logs := observer.New(zap.InfoLevel)
    e := newServer(RequestLogger(zap.New(core)), JWTAuth(secret))

    do(e, "")
    do(e, bearer(t, "user-1", "customer"))
    entries := logs.All()
    require.Len(t, entries, 2)
    assert.Equal(t, zap.WarnLevel, entries[0].Level)
    assert.Equal(t, int64(http.StatusUnauthorized), entries[0].ContextMap()["status"])
    assert.Equal(t, zap.InfoLevel, entries[1].Level)
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { rdb.Close() })
    return mr, rdb
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
    _, rdb := setupTestRedis(t)
    cfg := config.RateLimitConfig{Enabled: true, Capacity: 2, RefillTokens: 1,
        RefillInterval: time.Hour, TTL: 2 * time.Hour, KeyStrategy: "ip", Prefix: "rl"}
    e := newServer(NewTokenBucket(cfg, rdb, nil))

    assert.Equal(t, http.StatusOK, do(e, "").Code)
    rec := do(e, "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

    rec = do(e, "")
    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucketDisabledWithoutRedis(t *testing.T) {
    cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour}
    e := newServer(NewTokenBucket(cfg, nil, nil))
    for i := 0; i < 3; i++ {
        assert.Equal(t, http.StatusOK, do(e, "").Code)
    }
}

func TestResponseCacheHitAndInvalidate(t *testing.T) {
    mr, rdb := setupTestRedis(t)
    rc := NewResponseCache(config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache:rooms", MaxBodyBytes: 1 << 20}, rdb, nil)

    calls := 0
    e := echo.New()
    e.GET("/rooms", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"calls": calls})
    }, rc.Middleware())

    get := func() *httptest.ResponseRecorder {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
        return rec
    }

    first := get()
    assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
    second := get()
    assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
    assert.JSONEq(t, first.Body.String(), second.Body.String())
    assert.Equal(t, 1, calls)
    assert.Len(t, mr.Keys(), 1)

    rc.Invalidate(context.Background())
    assert.Empty(t, mr.Keys())
    third := get()
    assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
    assert.Equal(t, 2, calls)
}
