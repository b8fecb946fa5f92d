package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-bay-reservation/internal/booking"
	"github.com/iliyamo/parking-bay-reservation/internal/config"
	"github.com/iliyamo/parking-bay-reservation/internal/database"
	"github.com/iliyamo/parking-bay-reservation/internal/handler"
	"github.com/iliyamo/parking-bay-reservation/internal/middleware"
	"github.com/iliyamo/parking-bay-reservation/internal/queue"
	"github.com/iliyamo/parking-bay-reservation/internal/repository"
	"github.com/iliyamo/parking-bay-reservation/internal/router"
)

func main() {
	// .env is optional; in production everything comes from the
	// environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	store := repository.NewStore(db)
	tokens := repository.NewTokenRepo(db)
	svc := booking.New(store)

	// Redis is optional: a nil client turns the limiter and the
	// response cache into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	authHandler := handler.NewAuthHandler(cfg, store, tokens)
	bayHandler := handler.NewBayHandler(store, svc)
	resHandler := handler.NewReservationHandler(svc, store)
	adminBays := handler.NewAdminBayHandler(store)
	adminRes := handler.NewAdminReservationHandler(svc)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, bayHandler, resHandler, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterCustomer(e, resHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminBays, adminRes, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
