package view

import (
	"fmt"
	"sync"

	"github.com/labelboard/backend/internal/events"
	"github.com/labelboard/backend/internal/shared/types"
)

// Hub manages the known views and which one is current
type Hub struct {
	bus *events.Bus

	mu      sync.RWMutex
	order   []int         // Protected by mu
	views   map[int]*View // Protected by mu
	current int           // Protected by mu; 0 means none
}

// NewHub creates an empty hub
func NewHub(bus *events.Bus) *Hub {
	return &Hub{
		bus:   bus,
		views: make(map[int]*View),
	}
}

// Apply merges view definitions into the hub. A definition whose id already
// exists updates that view's ordering and filters in place (selection and
// lock state survive); new ids append in definition order. The first view
// ever applied becomes current.
func (h *Hub) Apply(defs []types.ViewDef) {
	h.mu.Lock()
	for _, def := range defs {
		if existing, ok := h.views[def.ID]; ok {
			existing.SetOrdering(def.Ordering)
			existing.SetFilters(def.Filters)
			continue
		}
		h.views[def.ID] = New(def)
		h.order = append(h.order, def.ID)
		if h.current == 0 {
			h.current = def.ID
		}
	}
	h.mu.Unlock()
}

// Get retrieves a view by id
func (h *Hub) Get(id int) (*View, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.views[id]
	return v, ok
}

// Current returns the current view, or nil before any view exists
func (h *Hub) Current() *View {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.views[h.current]
}

// SetCurrent switches the current view and publishes the change
func (h *Hub) SetCurrent(id int) error {
	h.mu.Lock()
	if _, ok := h.views[id]; !ok {
		h.mu.Unlock()
		return fmt.Errorf("unknown view: %d", id)
	}
	changed := h.current != id
	h.current = id
	h.mu.Unlock()

	if changed && h.bus != nil {
		h.bus.Publish(events.TypeViewChanged, id)
	}
	return nil
}

// List returns all views in application order
func (h *Hub) List() []*View {
	h.mu.RLock()
	defer h.mu.RUnlock()
	views := make([]*View, 0, len(h.order))
	for _, id := range h.order {
		views = append(views, h.views[id])
	}
	return views
}
