// Package seed fills an empty store with demo reservations.  Every
// reservation goes through the normal admission flow, so seeded data obeys
// the same validation and non-overlap rules as real bookings.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/bowling-lane-reservation/internal/booking"
	"github.com/iliyamo/bowling-lane-reservation/internal/model"
)

var (
	names = []string{
		"Ari Pratama", "Nia Kartika", "Rizky Ramadhan", "Salsa Dwi", "Dito Mahendra",
		"Putri Ayu", "Fajar Hidayat", "Maya Sari", "Dimas Saputra", "Lia Oktaviani",
	}
	notes = []string{
		"",
		"Booking latihan 2 jam",
		"Main bareng kantor",
		"Butuh 2 jam, lane bersebelahan",
		"Sesi malam setelah jam 18",
		"Reservasi untuk 4 orang",
	}
	emails = []string{
		"demo1@bowling.local", "demo2@bowling.local", "demo3@bowling.local", "demo4@bowling.local",
	}
)

// Admitter is the booking surface the seeder needs.
type Admitter interface {
	CreateReservation(ctx context.Context, req booking.CreateRequest, actor booking.Actor) (*model.Reservation, error)
	Count(ctx context.Context) (int, error)
	GetMeta() booking.Meta
}

// Options controls a seeding run.
type Options struct {
	Seed  int64  // PRNG seed; equal seeds give equal data on an empty store
	Count int    // reservations to aim for
	Date  string // YYYY-MM-DD all demo bookings fall on
}

// Run books up to opts.Count random reservations on opts.Date.  It does
// nothing when the store already holds reservations.  Random picks that
// collide with an earlier booking are skipped; at most ten attempts per
// wanted reservation are made.  The number of created reservations is
// returned.
func Run(ctx context.Context, svc Admitter, opts Options) (int, error) {
	n, err := svc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	if n > 0 {
		log.Info().Int("existing", n).Msg("seed skipped: reservations already exist")
		return 0, nil
	}

	meta := svc.GetMeta()
	if len(meta.Lanes) == 0 || len(meta.Slots) == 0 {
		return 0, errors.New("seed: catalogue has no lanes or slots")
	}
	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)))
	staff := booking.Actor{Name: "Demo Seeder", Email: "seed@bowling.local", Role: model.RoleStaff}

	created := 0
	for attempts := 0; created < opts.Count && attempts < opts.Count*10; attempts++ {
		req := booking.CreateRequest{
			Lane:          pick(rng, meta.Lanes),
			StartTime:     pick(rng, meta.Slots),
			DurationHours: 1 + rng.IntN(3),
			Date:          opts.Date,
			Players:       2 + rng.IntN(5),
			Phone:         fmt.Sprintf("08%d%d", 1111+rng.IntN(8889), 1111+rng.IntN(8889)),
			Name:          pick(rng, names),
			Notes:         pick(rng, notes),
			CustomerEmail: pick(rng, emails),
		}
		if _, err := svc.CreateReservation(ctx, req, staff); err != nil {
			if errors.Is(err, booking.ErrConflict) {
				continue
			}
			return created, fmt.Errorf("seed reservation: %w", err)
		}
		created++
	}
	log.Info().Int("created", created).Str("date", opts.Date).Msg("demo reservations seeded")
	return created, nil
}

func pick[T any](rng *rand.Rand, xs []T) T { return xs[rng.IntN(len(xs))] }
