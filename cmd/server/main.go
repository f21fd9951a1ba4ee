package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/bowling-lane-reservation/internal/booking"
	"github.com/iliyamo/bowling-lane-reservation/internal/config"
	"github.com/iliyamo/bowling-lane-reservation/internal/database"
	"github.com/iliyamo/bowling-lane-reservation/internal/handler"
	"github.com/iliyamo/bowling-lane-reservation/internal/jobs"
	"github.com/iliyamo/bowling-lane-reservation/internal/middleware"
	"github.com/iliyamo/bowling-lane-reservation/internal/queue"
	"github.com/iliyamo/bowling-lane-reservation/internal/repository"
	"github.com/iliyamo/bowling-lane-reservation/internal/router"
	"github.com/iliyamo/bowling-lane-reservation/internal/seed"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()
	config.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	catalog, err := config.LoadVenue(cfg.VenueConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("load venue config")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	reservations := repository.NewReservationRepo(db)

	if cfg.StaffEmail != "" && cfg.StaffPassword != "" {
		if err := users.EnsureStaff(ctx, cfg.StaffName, cfg.StaffEmail, cfg.StaffPassword, cfg.BcryptCost); err != nil {
			log.Fatal().Err(err).Msg("bootstrap staff account")
		}
		log.Info().Str("email", cfg.StaffEmail).Msg("staff account ready")
	}

	var events booking.Publisher
	if cfg.RabbitURL != "" {
		events = queue.NewPublisher(cfg.RabbitURL)
	}
	svc := booking.NewService(reservations, catalog, events)

	if cfg.SeedDemo {
		opts := seed.Options{Seed: cfg.DemoSeed, Count: cfg.DemoCount, Date: time.Now().UTC().Format("2006-01-02")}
		if _, err := seed.Run(ctx, svc, opts); err != nil {
			log.Fatal().Err(err).Msg("seed demo reservations")
		}
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, rate limiting and caching disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	sched, err := jobs.NewScheduler()
	if err != nil {
		log.Fatal().Err(err).Msg("create scheduler")
	}
	if err := jobs.RegisterTokenPurge(ctx, sched, cfg.TokenPurgeCron, tokens); err != nil {
		log.Fatal().Err(err).Msg("register token purge")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())

	rh := handler.NewReservationHandler(svc)
	router.RegisterRoutes(e, handler.Health(db), rh, middleware.ResponseCache(config.LoadCacheConfig(), rdb))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterReservations(e, rh, cfg.JWTSecret, middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if cfg.RabbitURL != "" {
		consumer := &queue.Consumer{URL: cfg.RabbitURL, LogPath: cfg.ReservationLog}
		g.Go(func() error { return consumer.Run(ctx) })
	}

	sched.Start()
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
		defer cancel()

		log.Info().Msg("shutting down")
		if err := sched.Stop(); err != nil {
			log.Warn().Err(err).Msg("scheduler stop")
		}
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server terminated with error")
		os.Exit(1)
	}
}
