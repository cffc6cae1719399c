// Package schedule provides a cancellable self-rescheduling task. The next
// cycle is armed only after the current run returns, so runs never overlap
// even when one outlasts the delay. The session's metadata poller depends
// on that property.
package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Task runs fn, waits delay, and repeats until stopped. All rescheduling
// state lives behind the handle; there is no hidden closure chain to leak.
type Task struct {
	name  string
	delay time.Duration
	fn    func(context.Context)
	runs  atomic.Uint64

	mu     sync.Mutex
	active bool
	ctx    context.Context
	cancel context.CancelFunc
	timer  *time.Timer
}

// NewTask creates a task; it does nothing until Start.
func NewTask(name string, delay time.Duration, fn func(context.Context)) *Task {
	return &Task{name: name, delay: delay, fn: fn}
}

// Name returns the task's name
func (t *Task) Name() string {
	return t.name
}

// Start launches the first cycle immediately in its own goroutine. Calling
// Start while the task is scheduled or running is a no-op; it reports
// whether a new chain was started.
func (t *Task) Start() bool {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return false
	}
	t.active = true
	t.ctx, t.cancel = context.WithCancel(context.Background())
	t.mu.Unlock()

	go t.cycle()
	return true
}

// Stop cancels the armed timer and the chain's context. No further cycles
// run; a cycle already executing finishes but does not re-arm. Idempotent.
func (t *Task) Stop() {
	t.mu.Lock()
	t.active = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Active reports whether a cycle is scheduled or executing
func (t *Task) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Runs returns how many cycles have executed
func (t *Task) Runs() uint64 {
	return t.runs.Load()
}

func (t *Task) cycle() {
	t.mu.Lock()
	ctx := t.ctx
	active := t.active
	t.mu.Unlock()

	if !active || ctx == nil || ctx.Err() != nil {
		return
	}

	t.runs.Add(1)
	t.fn(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active || t.ctx != ctx {
		// Stopped (or restarted) while fn was running.
		return
	}
	t.timer = time.AfterFunc(t.delay, t.cycle)
}
