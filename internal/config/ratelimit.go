package config

import "time"

// RateLimitConfig parameterises the Redis token bucket.  A bucket holds at
// most Capacity tokens and gains RefillTokens every RefillInterval.
// KeyStrategy is one of "ip", "user", "ip_user" or "ip_user_route".
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
}

func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    getenv("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         getenv("RATE_LIMIT_PREFIX", "rl"),
    }
    return cfg.normalized()
}

// normalized clamps nonsensical values.  The key TTL never drops below five
// refill intervals so an idle bucket is not forgotten while still refilling.
func (c RateLimitConfig) normalized() RateLimitConfig {
    if c.Capacity < 1 {
        c.Capacity = 1
    }
    if c.RefillTokens < 1 {
        c.RefillTokens = 1
    }
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    if min := 5 * c.RefillInterval; c.TTL < min {
        c.TTL = min
    }
    return c
}
