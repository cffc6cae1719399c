package view

import (
	"context"
	"sort"
	"sync"

	"github.com/labelboard/backend/internal/shared/types"
)

// View is one saved configuration of ordering, filters, and selection over
// an entity collection.
type View struct {
	mu       sync.Mutex
	id       int
	title    string
	target   types.Target
	ordering []string            // Protected by mu
	filters  types.Filters       // Protected by mu
	included map[int]struct{}    // Protected by mu; explicit positive selection
	excluded map[int]struct{}    // Protected by mu; unchecked rows in all-mode
	locked   bool                // Protected by mu
	reload   func(context.Context) error
}

// New materializes a view from its definition
func New(def types.ViewDef) *View {
	filters := def.Filters
	if filters.Conjunction == "" {
		filters.Conjunction = types.FilterConjunctionAnd
	}
	return &View{
		id:       def.ID,
		title:    def.Title,
		target:   def.Target,
		ordering: def.Ordering,
		filters:  filters,
		included: make(map[int]struct{}),
		excluded: make(map[int]struct{}),
	}
}

// ID returns the view's identifier
func (v *View) ID() int {
	return v.id
}

// Title returns the view's display name
func (v *View) Title() string {
	return v.title
}

// Target returns the entity type this view operates over
func (v *View) Target() types.Target {
	return v.target
}

// Ordering returns a copy of the ordering fields ("-field" is descending)
func (v *View) Ordering() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	ordering := make([]string, len(v.ordering))
	copy(ordering, v.ordering)
	return ordering
}

// SetOrdering replaces the ordering
func (v *View) SetOrdering(ordering []string) {
	v.mu.Lock()
	v.ordering = ordering
	v.mu.Unlock()
}

// Filters returns a copy of the filter conjunction and items
func (v *View) Filters() types.Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	items := make([]types.Filter, len(v.filters.Items))
	copy(items, v.filters.Items)
	return types.Filters{Conjunction: v.filters.Conjunction, Items: items}
}

// SetFilters replaces the filter set
func (v *View) SetFilters(f types.Filters) {
	if f.Conjunction == "" {
		f.Conjunction = types.FilterConjunctionAnd
	}
	v.mu.Lock()
	v.filters = f
	v.mu.Unlock()
}

// Lock flags the view so the UI disables action triggers. Cooperative only;
// it does not block anything server-side.
func (v *View) Lock() {
	v.mu.Lock()
	v.locked = true
	v.mu.Unlock()
}

// Unlock clears the flag. Unlocking an unlocked view is a no-op; the
// action pipeline relies on this.
func (v *View) Unlock() {
	v.mu.Lock()
	v.locked = false
	v.mu.Unlock()
}

// Locked reports the lock flag
func (v *View) Locked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.locked
}

// SelectRow adds a row to the explicit selection. Entering explicit mode
// abandons any all-mode exclusions.
func (v *View) SelectRow(id int) {
	v.mu.Lock()
	v.included[id] = struct{}{}
	delete(v.excluded, id)
	v.mu.Unlock()
}

// DeselectRow removes a row. Without an explicit selection the view is in
// all-mode, so the row lands on the exclusion list instead.
func (v *View) DeselectRow(id int) {
	v.mu.Lock()
	if len(v.included) > 0 {
		delete(v.included, id)
	} else {
		v.excluded[id] = struct{}{}
	}
	v.mu.Unlock()
}

// ClearSelection resets both selection forms
func (v *View) ClearSelection() {
	v.mu.Lock()
	v.included = make(map[int]struct{})
	v.excluded = make(map[int]struct{})
	v.mu.Unlock()
}

// Snapshot serializes the selection: the explicit set when one exists,
// otherwise all-rows-minus-exclusions. Exactly one shape, never both.
func (v *View) Snapshot() types.SelectionSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.included) > 0 {
		return types.SelectOnly(sortedIDs(v.included))
	}
	return types.SelectAll(sortedIDs(v.excluded))
}

// OnReload installs the hook Reload runs; wiring sets it to refetch the
// target store's rows.
func (v *View) OnReload(fn func(context.Context) error) {
	v.mu.Lock()
	v.reload = fn
	v.mu.Unlock()
}

// Reload refreshes the view's data through the installed hook
func (v *View) Reload(ctx context.Context) error {
	v.mu.Lock()
	fn := v.reload
	v.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
