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
    echomw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-reservation/internal/auth"
    "github.com/iliyamo/hotel-reservation/internal/cart"
    "github.com/iliyamo/hotel-reservation/internal/config"
    "github.com/iliyamo/hotel-reservation/internal/database"
    "github.com/iliyamo/hotel-reservation/internal/handler"
    "github.com/iliyamo/hotel-reservation/internal/logger"
    "github.com/iliyamo/hotel-reservation/internal/middleware"
    "github.com/iliyamo/hotel-reservation/internal/queue"
    "github.com/iliyamo/hotel-reservation/internal/repository"
    "github.com/iliyamo/hotel-reservation/internal/router"
    "github.com/iliyamo/hotel-reservation/internal/service"
    "github.com/iliyamo/hotel-reservation/internal/storage"
)

func main() {
    cfg := config.Load()

    log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "hotel-reservation")
    if err != nil {
        panic(err)
    }
    defer func() { _ = log.Sync() }()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatal("database connection failed", zap.Error(err))
    }
    defer db.Close()

    migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
    if err := database.Migrate(migrateCtx, db); err != nil {
        cancelMigrate()
        log.Fatal("schema migration failed", zap.Error(err))
    }
    cancelMigrate()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Warn("redis unavailable: carts kept in memory, cache and rate limit disabled")
    } else {
        defer rdb.Close()
    }

    rooms := repository.NewRoomRepo(db)
    reservations := repository.NewReservationRepo(db)
    roles := repository.NewRoleRepo(db, log)
    profiles := repository.NewProfileRepo(db)

    provider := auth.NewProvider(repository.NewUserRepo(db), repository.NewTokenRepo(db), roles, auth.Options{
        JWTSecret:      cfg.JWTSecret,
        AccessTTLMin:   cfg.AccessTTLMin,
        RefreshTTLDays: cfg.RefreshTTLDays,
        BcryptCost:     cfg.BcryptCost,
    }, log)
    audit := log.Named("audit")
    unsubscribe := provider.OnSessionChange(func(ev auth.Event, userID string, _ *auth.Session) {
        audit.Info("session change", zap.String("event", string(ev)), zap.String("user_id", userID))
    })
    defer unsubscribe()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    var events service.EventPublisher = queue.NopPublisher{}
    if cfg.AMQPURL != "" {
        events = queue.NewPublisher(cfg.AMQPURL, log)
        consumer := queue.NewConsumer(cfg.AMQPURL, "", log)
        go func() {
            if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
                log.Error("reservation consumer stopped", zap.Error(err))
            }
        }()
    } else {
        log.Info("AMQP_URL not set: reservation events disabled")
    }

    carts := cart.New(rdb)
    reservationSvc := service.NewReservationService(rooms, reservations, carts, events, log)
    cartSvc := service.NewCartService(rooms, carts)

    roomCache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log)
    avatars := storage.NewAvatarStore(cfg.AvatarDir, cfg.AvatarBaseURL, cfg.AvatarMaxBytes)

    roomH := handler.NewRoomHandler(rooms, roomCache, log)
    reservationH := handler.NewReservationHandler(reservationSvc, log)
    roleH := handler.NewRoleHandler(roles, log)

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.RequestID())
    e.Use(middleware.RequestLogger(log))

    guard := router.Guard{
        JWTSecret: cfg.JWTSecret,
        Roles:     roles,
        RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
    }
    router.RegisterRoutes(e, handler.Health(db), cfg.AvatarDir, cfg.AvatarBaseURL)
    router.RegisterAuth(e, handler.NewAuthHandler(provider, log), guard)
    router.RegisterCustomer(e, router.CustomerHandlers{
        Rooms:        roomH,
        Cart:         handler.NewCartHandler(cartSvc, reservationSvc, log),
        Reservations: reservationH,
        Profile:      handler.NewProfileHandler(profiles, avatars, log),
        Roles:        roleH,
    }, guard, roomCache.Middleware())
    router.RegisterAdmin(e, router.AdminHandlers{
        Rooms:        roomH,
        Reservations: reservationH,
        Roles:        roleH,
    }, guard)

    addr := ":" + cfg.Port
    go func() {
        log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatal("server failed", zap.Error(err))
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Error("shutdown", zap.Error(err))
    }
}
