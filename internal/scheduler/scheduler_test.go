package scheduler

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEverySpec(t *testing.T) {
	assert.Equal(t, "@every 5m0s", every(5*time.Minute))
	assert.Equal(t, "@every 30s", every(30*time.Second))
}

func TestStartRunsJobsImmediately(t *testing.T) {
	s := New()
	defer s.Stop()

	var scans, enforces atomic.Int32
	scan := func() error { scans.Add(1); return nil }
	enforce := func() error { enforces.Add(1); return nil }

	require.NoError(t, s.Start(scan, time.Hour, enforce, time.Hour))

	require.Eventually(t, func() bool {
		return scans.Load() >= 1 && enforces.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.False(t, s.LastEnforceTick().IsZero())
}

func TestFailedJobStillStampsTick(t *testing.T) {
	s := New()
	defer s.Stop()

	enforce := func() error { return fmt.Errorf("platform down") }
	require.NoError(t, s.Start(func() error { return nil }, time.Hour, enforce, time.Hour))

	// A failing tick still ran; health freshness tracks liveness, not success.
	require.Eventually(t, func() bool {
		return !s.LastEnforceTick().IsZero()
	}, 2*time.Second, 10*time.Millisecond)
}
