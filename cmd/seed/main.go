// Command seed fills an empty reservations table with demo bookings for
// today (or -date).  It is a no-op when reservations already exist.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/bowling-lane-reservation/internal/booking"
	"github.com/iliyamo/bowling-lane-reservation/internal/config"
	"github.com/iliyamo/bowling-lane-reservation/internal/database"
	"github.com/iliyamo/bowling-lane-reservation/internal/repository"
	"github.com/iliyamo/bowling-lane-reservation/internal/seed"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	config.SetupLogger(cfg)

	date := flag.String("date", time.Now().UTC().Format("2006-01-02"), "date the demo bookings fall on")
	count := flag.Int("count", cfg.DemoCount, "reservations to aim for")
	seedVal := flag.Int64("seed", cfg.DemoSeed, "random seed")
	flag.Parse()

	ctx := context.Background()
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

	svc := booking.NewService(repository.NewReservationRepo(db), catalog, nil)
	if _, err := seed.Run(ctx, svc, seed.Options{Seed: *seedVal, Count: *count, Date: *date}); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
}
