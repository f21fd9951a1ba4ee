package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// TokenPurger deletes refresh tokens that are no longer usable.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeExpiredTokens removes refresh tokens that expired or were revoked
// before now.
func PurgeExpiredTokens(ctx context.Context, p TokenPurger, now time.Time) error {
	n, err := p.PurgeExpired(ctx, now.UTC())
	if err != nil {
		return fmt.Errorf("purge refresh tokens: %w", err)
	}
	log.Info().Int64("deleted", n).Msg("expired refresh tokens purged")
	return nil
}

// RegisterTokenPurge schedules PurgeExpiredTokens.  Each run gets its own
// one-minute deadline derived from ctx.
func RegisterTokenPurge(ctx context.Context, s *Scheduler, cronExpr string, p TokenPurger) error {
	_, err := s.AddJob("purge-refresh-tokens", cronExpr, func() {
		rctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := PurgeExpiredTokens(rctx, p, time.Now()); err != nil {
			log.Error().Err(err).Msg("token purge failed")
		}
	})
	return err
}
