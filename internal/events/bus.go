// Package events provides the explicit notification mechanism between the
// session orchestrator and its observers. State changes are published as
// plain events on an in-process bus; the websocket layer and tests subscribe
// to them instead of reaching into session internals.
package events

import (
	"sort"
	"sync"
	"time"
)

// Type names an event family
type Type string

const (
	TypeModeChanged        Type = "mode.changed"
	TypeTaskSelected       Type = "task.selected"
	TypeAnnotationSelected Type = "annotation.selected"
	TypeSelectionCleared   Type = "selection.cleared"
	TypeViewChanged        Type = "view.changed"
	TypeProjectUpdated     Type = "project.updated"
	TypeActionsUpdated     Type = "actions.updated"
	TypeActionInvoked      Type = "action.invoked"
	TypeNotification       Type = "notification"
	TypeConfirmRequested   Type = "confirm.requested"
	TypeLocationOpen       Type = "location.open"
)

// Event is one published state change
type Event struct {
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

// Handler consumes published events. Handlers run synchronously in the
// publisher's goroutine and must not block.
type Handler func(Event)

// Bus fans events out to subscribers. Safe for concurrent Publish and
// Subscribe; delivery order within one Publish follows subscription order.
type Bus struct {
	mu   sync.RWMutex
	seq  int
	subs map[int]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers a handler and returns its subscription handle
func (b *Bus) Subscribe(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	id := b.seq
	b.subs[id] = h
	return &Subscription{bus: b, id: id}
}

// Publish delivers the event to every subscriber registered at call time.
// The timestamp is stamped here so publishers don't have to.
func (b *Bus) Publish(typ Type, payload interface{}) {
	e := Event{Type: typ, Payload: payload, At: time.Now()}

	b.mu.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Subscribers returns the current subscriber count
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Subscription is an active registration; Close is idempotent.
type Subscription struct {
	bus  *Bus
	id   int
	once sync.Once
}

// Close removes the subscriber from the bus
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
	})
}
