package config

import (
    "strings"
    "time"
)

// CacheConfig configures the Redis response cache in front of the
// room and facility listings.  The route pattern is always part of a
// key so catalogue writes can purge by route; KeyStrategy adds the
// query ("route_query") or nothing ("route").
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
    c := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      map[string]bool{},
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    for _, m := range strings.Split(envStr("CACHE_METHODS", "GET"), ",") {
        if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
            c.Methods[m] = true
        }
    }
    return c
}

// RateLimitConfig configures the Redis token bucket.  Each key starts
// with Capacity tokens and regains RefillTokens every RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
    r := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    // RATE_LIMIT_REFILL_EVERY is shorthand for one token per interval.
    if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
        r.RefillTokens, r.RefillInterval = 1, every
    }
    return r.normalize()
}

// normalize clamps values the bucket script cannot work with.  A key
// must outlive at least five refill intervals.
func (r RateLimitConfig) normalize() RateLimitConfig {
    r.Capacity = max(r.Capacity, 1)
    r.RefillTokens = max(r.RefillTokens, 1)
    if r.RefillInterval <= 0 {
        r.RefillInterval = time.Second
    }
    r.TTL = max(r.TTL, 5*r.RefillInterval)
    return r
}
