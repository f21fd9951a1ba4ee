package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	cutoff time.Time
	n      int64
	err    error
}

func (f *fakePurger) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.n, f.err
}

func TestPurgeExpiredTokens(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	p := &fakePurger{n: 3}
	require.NoError(t, PurgeExpiredTokens(context.Background(), p, now))
	assert.True(t, p.cutoff.Equal(now))
	assert.Equal(t, time.UTC, p.cutoff.Location())

	p = &fakePurger{err: errors.New("db down")}
	err := PurgeExpiredTokens(context.Background(), p, now)
	assert.ErrorContains(t, err, "db down")
}

func TestAddJobValidation(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Stop() }()

	tests := []struct {
		name, job, cron string
		want            error
	}{
		{"empty name", " ", "* * * * *", ErrEmptyJobName},
		{"empty cron", "job", "", ErrEmptyCronExpr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddJob(tt.job, tt.cron, func() {})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = s.AddJob("bad", "not a cron", func() {})
	assert.Error(t, err)
}

func TestRegisterTokenPurge(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer func() { _ = s.Stop() }()

	require.NoError(t, RegisterTokenPurge(context.Background(), s, "0 3 * * *", &fakePurger{}))
	s.Start()
	assert.NoError(t, s.Stop())
	assert.NoError(t, s.Stop())
}
