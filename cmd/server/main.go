package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/config"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/database"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/handler"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/middleware"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/queue"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/repository"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/router"
	"github.com/PiyushiRan/Seat-Reservation-System-Intern/internal/scheduler"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("database: %v", err)
	}

	// Repositories and the scheduling engine.
	store := repository.NewReservationStore(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	seats := repository.NewSeatRepo(db)
	engine := scheduler.NewEngine(store, scheduler.NewSystemClock(),
		scheduler.WithLeadTime(cfg.ReservationLeadTime))

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	resH := handler.NewReservationHandler(engine, seats)
	seatH := handler.NewSeatHandler(seats, engine)
	reportH := handler.NewReportHandler(engine)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed rate limiting and response caching.  Both degrade to
	// no-ops when Redis is unreachable.  The cache is applied only to
	// seat inventory reads; reservation views differ per caller.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterReservations(e, resH, cfg.JWTSecret)
	router.RegisterSeats(e, seatH, cfg.JWTSecret, cacheMW)
	router.RegisterReports(e, reportH, cfg.JWTSecret)

	// Background consumer writing the reservation audit log.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, lead_time=%s)", addr, cfg.Env, cfg.ReservationLeadTime)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
