package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRatings struct {
	calls int
	err   error
}

func (f *fakeRatings) ReconcileRatings() (int, error) {
	f.calls++
	return 3, f.err
}

type fakeCarts struct {
	cutoff time.Time
}

func (f *fakeCarts) DeleteStaleCarts(before time.Time) (int64, error) {
	f.cutoff = before
	return 2, nil
}

func TestMaintenanceScheduler_CleanupCutoff(t *testing.T) {
	carts := &fakeCarts{}
	s := NewMaintenanceScheduler(&fakeRatings{}, carts, 30*24*time.Hour)
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.cleanupCarts()

	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), carts.cutoff)
}

func TestMaintenanceScheduler_ReconcileErrorIsLogged(t *testing.T) {
	ratings := &fakeRatings{err: errors.New("db down")}
	s := NewMaintenanceScheduler(ratings, &fakeCarts{}, time.Hour)

	assert.NotPanics(t, s.reconcileRatings)
	assert.Equal(t, 1, ratings.calls)
}

func TestMaintenanceScheduler_StartRegistersJobs(t *testing.T) {
	s := NewMaintenanceScheduler(&fakeRatings{}, &fakeCarts{}, time.Hour)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.cron.Entries(), 2)
}
