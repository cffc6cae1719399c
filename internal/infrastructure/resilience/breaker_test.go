package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemote = errors.New("remote down")

func failN(b *Breaker, n int) {
	for i := 0; i < n; i++ {
		_ = b.Execute(func() error { return errRemote })
	}
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	b := New("test", Settings{
		TripAfter: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
	})

	failN(b, 2)
	assert.Equal(t, StateClosed, b.State())

	failN(b, 1)
	assert.Equal(t, StateOpen, b.State())

	err := b.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrOpen)
}

func TestBreakerSuccessResetsStreak(t *testing.T) {
	b := New("test", Settings{
		TripAfter: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
	})

	failN(b, 2)
	require.NoError(t, b.Execute(func() error { return nil }))
	failN(b, 2)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := New("test", Settings{
		MaxProbes: 1,
		Cooldown:  10 * time.Millisecond,
		TripAfter: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})

	failN(b, 1)
	require.Equal(t, StateOpen, b.State())

	time.Sleep(15 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := New("test", Settings{
		MaxProbes: 1,
		Cooldown:  10 * time.Millisecond,
		TripAfter: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})

	failN(b, 1)
	time.Sleep(15 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	failN(b, 1)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerStateChangeCallback(t *testing.T) {
	var transitions []State
	b := New("test", Settings{
		TripAfter:     func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		OnStateChange: func(_ string, _, to State) { transitions = append(transitions, to) },
	})

	failN(b, 1)
	assert.Equal(t, []State{StateOpen}, transitions)
}

func TestErrorPassesThrough(t *testing.T) {
	b := New("test", Settings{})
	err := b.Execute(func() error { return errRemote })
	assert.ErrorIs(t, err, errRemote)
}
