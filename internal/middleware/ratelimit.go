package middleware

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/config"
    "github.com/iliyamo/room-booking/internal/metrics"
)

// takeToken refills the bucket in whole intervals since the last refill,
// then spends one token if any is left.  It returns
// {allowed, tokens_left, retry_after_ms}.
var takeToken = redis.NewScript(`
local capacity = tonumber(ARGV[2])
local per      = tonumber(ARGV[3])
local every    = tonumber(ARGV[4])
local now      = tonumber(ARGV[1])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens') or capacity)
local last   = tonumber(redis.call('HGET', KEYS[1], 'ts') or now)

local steps = math.floor(math.max(0, now - last) / every)
if steps > 0 then
    tokens = math.min(capacity, tokens + steps * per)
    last = last + steps * every
end

local retry = 0
local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
else
    retry = math.max(0, every - (now - last))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', last)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
return {allowed, tokens, retry}
`)

// bucketResult is one script outcome.
type bucketResult struct {
    Allowed   bool
    Remaining int64
    Retry     time.Duration
}

type tokenBucket struct {
    rdb *redis.Client
    cfg config.RateLimitConfig
    now func() time.Time
}

func (b *tokenBucket) take(ctx context.Context, key string) (bucketResult, error) {
    vals, err := takeToken.Run(ctx, b.rdb, []string{key},
        b.now().UnixMilli(),
        int64(b.cfg.Capacity),
        int64(b.cfg.RefillTokens),
        b.cfg.RefillInterval.Milliseconds(),
        int64(b.cfg.TTL/time.Second),
    ).Slice()
    if err != nil {
        return bucketResult{}, err
    }
    if len(vals) != 3 {
        return bucketResult{}, fmt.Errorf("rate limit script returned %d values", len(vals))
    }
    return bucketResult{
        Allowed:   asInt64(vals[0]) == 1,
        Remaining: asInt64(vals[1]),
        Retry:     time.Duration(asInt64(vals[2])) * time.Millisecond,
    }, nil
}

// NewTokenBucket limits requests with a token bucket kept in Redis, so
// every instance shares one budget per key.  Redis errors let the
// request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *logrus.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return newTokenBucket(&tokenBucket{rdb: rdb, cfg: cfg, now: time.Now}, log)
}

func newTokenBucket(b *tokenBucket, log *logrus.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(b.cfg, c)
            res, err := b.take(c.Request().Context(), key)
            if err != nil {
                log.WithError(err).WithField("key", key).Warn("rate limit check skipped")
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(b.cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
            if b.cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if res.Allowed {
                return next(c)
            }

            secs := int64((res.Retry + time.Second - 1) / time.Second)
            h.Set("Retry-After", strconv.FormatInt(secs, 10))
            metrics.ObserveRateLimited(c.Path())
            log.WithFields(logrus.Fields{"key": key, "retry_ms": res.Retry.Milliseconds()}).Debug("rate limited")
            return c.JSON(http.StatusTooManyRequests, echo.Map{
                "error":      "rate limit exceeded",
                "retryAfter": secs,
            })
        }
    }
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        n, _ := strconv.ParseInt(t, 10, 64)
        return n
    }
    return 0
}

// buildRateKey names the bucket for a request.  The strategy picks which
// of ip, user and route identify it; the default uses all three.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    parts := map[string]string{
        "ip":    ip,
        "user":  userID(c),
        "route": c.Request().Method + " " + c.Path(),
    }

    strategy := strings.ToLower(cfg.KeyStrategy)
    var dims []string
    switch strategy {
    case "ip", "user", "route", "ip_user", "ip_route", "user_route":
        dims = strings.Split(strategy, "_")
    default:
        dims = []string{"ip", "user", "route"}
    }

    key := []string{cfg.Prefix}
    for _, d := range dims {
        key = append(key, d, parts[d])
    }
    return strings.Join(key, ":")
}
