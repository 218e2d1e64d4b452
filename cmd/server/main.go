package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/xeviet/bus-ticketing/internal/config"
	"github.com/xeviet/bus-ticketing/internal/database"
	"github.com/xeviet/bus-ticketing/internal/handler"
	"github.com/xeviet/bus-ticketing/internal/middleware"
	"github.com/xeviet/bus-ticketing/internal/queue"
	"github.com/xeviet/bus-ticketing/internal/repository"
	"github.com/xeviet/bus-ticketing/internal/router"
	"github.com/xeviet/bus-ticketing/internal/service"
)

func main() {
	// .env is a dev convenience; real deployments set the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories.
	routes := repository.NewRouteRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	trips := repository.NewTripRepo(db)
	seats := repository.NewSeatRepo(db)
	tickets := repository.NewTicketRepo(db)
	customers := repository.NewCustomerRepo(db)
	fares := repository.NewFareRepo(db)
	accounts := repository.NewAccountRepo(db)
	tokens := repository.NewTokenRepo(db)

	if cfg.MigrateOnBoot {
		if n, err := tickets.NormalizeLegacyStatuses(context.Background()); err != nil {
			log.Printf("migrate: normalize legacy statuses: %v", err)
		} else {
			log.Printf("migrate: normalized %d legacy ticket rows", n)
		}
		if n, err := tickets.BackfillCustomerIDs(context.Background()); err != nil {
			log.Printf("migrate: backfill customer ids: %v", err)
		} else {
			log.Printf("migrate: backfilled %d customer references", n)
		}
	}

	// Services.
	provisioner := service.NewSeatProvisioner(seats, vehicles)
	projector := service.NewSeatProjector(seats, tickets, customers, trips)
	bookings := service.NewBookingService(db, trips, vehicles, customers, tickets, seats, fares, nil)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, customers, accounts, tokens)
	publicH := handler.NewPublicHandler(routes, trips, seats, tickets)
	bookingH := handler.NewBookingHandler(bookings, projector)
	ticketH := handler.NewTicketHandler(tickets, trips, bookings)
	tripAdminH := handler.NewTripAdminHandler(trips, tickets, seats, provisioner)
	vehicleAdminH := handler.NewVehicleAdminHandler(vehicles, projector)
	routeAdminH := handler.NewRouteAdminHandler(routes)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Redis is optional; without it the cache and limiter pass through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, cache and rate limiting disabled")
	}
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterHealth(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, bookingH, limiter, cache)
	router.RegisterCustomer(e, bookingH, ticketH, authH, cfg.JWTSecret)
	router.RegisterAdmin(e, tripAdminH, vehicleAdminH, routeAdminH, cfg.JWTSecret)

	// The ticket log consumer reconnects forever in the background.
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
