package config

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"
)

// NewRedisClient connects to Redis for rate limiting and the response
// cache.  Supported variables are:
//
//    REDIS_HOST and REDIS_PORT (or REDIS_ADDR as host:port)
//    REDIS_PASSWORD
//    REDIS_DB (default 0)
//    REDIS_TLS ("true" or "1")
//
// It returns nil when the server does not answer a ping, and callers
// run without caching and rate limiting.
func NewRedisClient(log *logrus.Logger) *redis.Client {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
        addr = host + ":" + port
    }
    var tlsConf *tls.Config
    if envBool("REDIS_TLS", false) {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  envStr("REDIS_PASSWORD", ""),
        DB:        envInt("REDIS_DB", 0),
        TLSConfig: tlsConf,
    })

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        log.WithError(err).WithField("addr", addr).Warn("redis unavailable; cache and rate limit disabled")
        _ = client.Close()
        return nil
    }
    return client
}
