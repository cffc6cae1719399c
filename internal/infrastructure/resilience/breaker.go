// Package resilience provides the circuit breaker guarding outbound calls to
// the annotation API. When the remote keeps failing, further calls are
// rejected immediately instead of piling up behind timeouts; after a cooldown
// a limited number of probes decide whether to close the circuit again.
package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrOpen is returned while the circuit rejects calls outright.
	ErrOpen = errors.New("circuit breaker is open")
	// ErrTooManyProbes is returned when the half-open probe budget is spent.
	ErrTooManyProbes = errors.New("circuit breaker probe limit reached")
)

// State is the breaker's position
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the lowercase state name
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Counts tracks call outcomes since the last state change
type Counts struct {
	Calls                uint32
	Successes            uint32
	Failures             uint32
	ConsecutiveFailures  uint32
	ConsecutiveSuccesses uint32
}

// Settings configures a breaker. Zero values get sensible defaults.
type Settings struct {
	// MaxProbes limits concurrent-ish calls allowed through in half-open.
	MaxProbes uint32
	// Cooldown is how long the circuit stays open before probing.
	Cooldown time.Duration
	// TripAfter decides, from the current counts, whether to open the
	// circuit after a failure in closed state.
	TripAfter func(Counts) bool
	// OnStateChange observes transitions (logging, metrics).
	OnStateChange func(name string, from, to State)
}

// Breaker implements the circuit breaker pattern around a single remote
type Breaker struct {
	name     string
	settings Settings

	mu     sync.Mutex
	state  State
	gen    uint64
	counts Counts
	opened time.Time
}

// New creates a breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.MaxProbes == 0 {
		settings.MaxProbes = 1
	}
	if settings.Cooldown == 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.TripAfter == nil {
		settings.TripAfter = func(c Counts) bool {
			return c.ConsecutiveFailures >= 5
		}
	}
	return &Breaker{name: name, settings: settings}
}

// Name returns the breaker's name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, applying the cooldown transition
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState(time.Now())
}

// Counts returns a copy of the outcome counters
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Execute runs fn under the breaker. The error from fn passes through
// unchanged; ErrOpen / ErrTooManyProbes are returned without calling fn.
func (b *Breaker) Execute(fn func() error) error {
	gen, err := b.before()
	if err != nil {
		return err
	}
	err = fn()
	b.after(gen, err == nil)
	return err
}

func (b *Breaker) before() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	switch b.currentState(now) {
	case StateOpen:
		return b.gen, ErrOpen
	case StateHalfOpen:
		if b.counts.Calls >= b.settings.MaxProbes {
			return b.gen, ErrTooManyProbes
		}
	}
	b.counts.Calls++
	return b.gen, nil
}

func (b *Breaker) after(gen uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if gen != b.gen {
		// The circuit moved on while the call was in flight; its outcome
		// belongs to a prior generation and must not skew the new counts.
		return
	}

	if success {
		b.counts.Successes++
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if b.currentState(now) == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.MaxProbes {
			b.transition(StateClosed, now)
		}
		return
	}

	b.counts.Failures++
	b.counts.ConsecutiveFailures++
	b.counts.ConsecutiveSuccesses = 0
	switch b.currentState(now) {
	case StateClosed:
		if b.settings.TripAfter(b.counts) {
			b.transition(StateOpen, now)
		}
	case StateHalfOpen:
		b.transition(StateOpen, now)
	}
}

// currentState applies the open→half-open cooldown; callers hold b.mu.
func (b *Breaker) currentState(now time.Time) State {
	if b.state == StateOpen && now.Sub(b.opened) >= b.settings.Cooldown {
		b.transition(StateHalfOpen, now)
	}
	return b.state
}

// transition changes state and resets counters; callers hold b.mu.
func (b *Breaker) transition(to State, now time.Time) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.gen++
	b.counts = Counts{}
	if to == StateOpen {
		b.opened = now
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
