package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/room-booking/internal/config"
    "github.com/iliyamo/room-booking/internal/database"
    "github.com/iliyamo/room-booking/internal/handler"
    "github.com/iliyamo/room-booking/internal/middleware"
    "github.com/iliyamo/room-booking/internal/queue"
    "github.com/iliyamo/room-booking/internal/repository"
    "github.com/iliyamo/room-booking/internal/router"
    "github.com/iliyamo/room-booking/internal/service"
)

func main() {
    cfg := config.Load()
    log := cfg.NewLogger()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.WithError(err).Fatal("db connect failed")
    }
    defer db.Close()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    if cfg.AutoMigrate {
        if err := repository.Migrate(ctx, db); err != nil {
            log.WithError(err).Fatal("schema migration failed")
        }
    }

    rdb := config.NewRedisClient(log)
    if rdb != nil {
        defer rdb.Close()
    }
    purger := middleware.NewCachePurger(rdb, cfg.Cache.Prefix)

    var events service.EventPublisher
    if cfg.Queue.URL != "" {
        events = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name, log)
    }
    if cfg.Queue.URL != "" && cfg.Queue.ConsumeEvents {
        consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Name, cfg.Queue.LogPath, log)
        go func() {
            if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
                log.WithError(err).Error("booking consumer stopped")
            }
        }()
    }

    store := repository.NewSQLStore(db)
    lifecycle := service.NewLifecycle(store, events, purger, log)
    catalog := service.NewCatalog(store, purger, log)
    accounts := service.NewAccounts(store, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost, log)
    approvals := service.NewFacilityApproval(store, lifecycle)
    reports := service.NewReports(store)

    e := echo.New()
    e.HideBanner = true
    e.Validator = handler.NewValidator()
    e.Use(middleware.RequestLogger(log))

    router.Register(e, router.Handlers{
        Health:    handler.NewHealthHandler(db),
        Auth:      handler.NewAuthHandler(accounts, log),
        Catalog:   handler.NewCatalogHandler(catalog, log),
        Bookings:  handler.NewBookingHandler(lifecycle, log),
        Approvals: handler.NewApprovalHandler(approvals, log),
        Admin:     handler.NewAdminHandler(accounts, reports, log),
    }, router.Options{
        JWTSecret: cfg.JWTSecret,
        Cache:     middleware.NewRedisCache(cfg.Cache, rdb, log),
        RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
    })

    addr := ":" + cfg.Port
    go func() {
        log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.WithError(err).Fatal("server failed")
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.WithError(err).Error("graceful shutdown failed")
    }
    log.Info("server stopped")
}
