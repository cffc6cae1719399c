package history

import (
	"sync"

	"github.com/labelboard/backend/internal/shared/types"
)

// Memory is the in-process Navigator. It mirrors browser history semantics:
// Navigate truncates any forward entries, Back and Forward move the cursor
// and fire change listeners; Navigate itself does not (pushing an entry is
// not a navigation event).
type Memory struct {
	mu        sync.Mutex
	entries   []types.NavState // Protected by mu
	pos       int              // Protected by mu; index into entries
	seq       int
	listeners map[int]func(types.NavState) // Protected by mu
}

// NewMemory creates a navigator with a single empty entry
func NewMemory() *Memory {
	return &Memory{
		entries:   []types.NavState{{}},
		listeners: make(map[int]func(types.NavState)),
	}
}

// Navigate pushes a new entry at the cursor, dropping forward history
func (m *Memory) Navigate(state types.NavState) {
	m.mu.Lock()
	m.entries = append(m.entries[:m.pos+1], state)
	m.pos = len(m.entries) - 1
	m.mu.Unlock()
}

// OnChange registers a back/forward listener
func (m *Memory) OnChange(fn func(types.NavState)) func() {
	m.mu.Lock()
	m.seq++
	id := m.seq
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Current returns the entry under the cursor
func (m *Memory) Current() types.NavState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.pos]
}

// Back moves to the previous entry; it reports whether the cursor moved
func (m *Memory) Back() bool {
	return m.move(-1)
}

// Forward moves to the next entry; it reports whether the cursor moved
func (m *Memory) Forward() bool {
	return m.move(1)
}

// Depth returns how many entries exist
func (m *Memory) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) move(delta int) bool {
	m.mu.Lock()
	next := m.pos + delta
	if next < 0 || next >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.pos = next
	state := m.entries[m.pos]
	fns := make([]func(types.NavState), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
	return true
}
