package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")
    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 2*time.Second, cfg.RefillInterval)
    assert.Equal(t, 10*time.Second, cfg.TTL)
    assert.Equal(t, "ip_user_route", cfg.KeyStrategy)
}

func TestLoadCacheConfigDefaults(t *testing.T) {
    t.Setenv("CACHE_ENABLED", "off")
    t.Setenv("CACHE_PREFIX", "c:")
    cfg := LoadCacheConfig()
    assert.False(t, cfg.Enabled)
    assert.Equal(t, "c", cfg.Prefix)
    assert.Equal(t, 30*time.Second, cfg.TTL)
    assert.Equal(t, 1<<20, cfg.MaxBodyBytes)
}

func TestLoadReadsOptionalSettings(t *testing.T) {
    for k, v := range map[string]string{
        "APP_ENV": "test", "APP_PORT": "8080", "DB_USER": "u", "DB_HOST": "h",
        "DB_PORT": "3306", "DB_NAME": "hotel", "JWT_SECRET": "s",
        "ACCESS_TOKEN_TTL_MIN": "15", "REFRESH_TOKEN_TTL_DAYS": "7", "BCRYPT_COST": "10",
        "AVATAR_MAX_BYTES": "1024", "LOG_LEVEL": "", "AVATAR_BASE_URL": "",
    } {
        t.Setenv(k, v)
    }
    cfg := Load()
    assert.Equal(t, "hotel", cfg.DBName)
    assert.Equal(t, 15, cfg.AccessTTLMin)
    assert.Equal(t, "info", cfg.LogLevel)
    assert.Equal(t, "/avatars", cfg.AvatarBaseURL)
    assert.Equal(t, int64(1024), cfg.AvatarMaxBytes)
}

func TestAvatarMaxBytesNeverExceedsTwoMegabytes(t *testing.T) {
    t.Setenv("AVATAR_MAX_BYTES", "10485760")
    assert.Equal(t, int64(2<<20), avatarMaxBytes())

    t.Setenv("AVATAR_MAX_BYTES", "-5")
    assert.Equal(t, int64(2<<20), avatarMaxBytes())

    t.Setenv("AVATAR_MAX_BYTES", "")
    assert.Equal(t, int64(2<<20), avatarMaxBytes())

    t.Setenv("AVATAR_MAX_BYTES", "4096")
    assert.Equal(t, int64(4096), avatarMaxBytes())
}
