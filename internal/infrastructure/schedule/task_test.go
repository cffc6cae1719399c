package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartIsIdempotent(t *testing.T) {
	task := NewTask("noop", time.Hour, func(context.Context) {})
	defer task.Stop()

	assert.True(t, task.Start())
	assert.False(t, task.Start())
	assert.True(t, task.Active())
}

func TestStopPreventsFurtherCycles(t *testing.T) {
	var runs atomic.Int32
	task := NewTask("counter", 5*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	task.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond)
	task.Stop()
	task.Stop() // idempotent

	settled := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, runs.Load())
	assert.False(t, task.Active())
}

// A run longer than the delay must not overlap the next one: the timer is
// armed only after the function returns.
func TestCyclesNeverOverlap(t *testing.T) {
	var inFlight atomic.Int32
	var overlapped atomic.Bool

	task := NewTask("slow", time.Millisecond, func(context.Context) {
		if inFlight.Add(1) > 1 {
			overlapped.Store(true)
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
	})

	task.Start()
	require.Eventually(t, func() bool { return task.Runs() >= 3 }, 2*time.Second, time.Millisecond)
	task.Stop()

	assert.False(t, overlapped.Load())
}

func TestStopCancelsRunContext(t *testing.T) {
	started := make(chan struct{})
	canceled := make(chan struct{})

	task := NewTask("ctx", time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(canceled)
	})

	task.Start()
	<-started
	task.Stop()

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("run context was not canceled by Stop")
	}
}

func TestRestartAfterStop(t *testing.T) {
	var runs atomic.Int32
	task := NewTask("restart", time.Hour, func(context.Context) {
		runs.Add(1)
	})

	task.Start()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
	task.Stop()

	assert.True(t, task.Start())
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
	task.Stop()
}
