package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/labelboard/backend/internal/shared/types"
)

// Fetcher loads one task with its annotations from the remote API. Stores
// take it as a dependency so they stay decoupled from the transport.
type Fetcher func(ctx context.Context, id int) (*types.Task, error)

// Store is the capability every per-target data store implements
type Store interface {
	Target() types.Target
	Columns() []types.Column
	// Load fetches the row with the given id; selectOnLoad selects it once
	// the fetch completes. Loading reports true while a fetch is in flight.
	Load(ctx context.Context, id int, selectOnLoad bool) error
	Select(id int)
	Unset()
	Selected() (int, bool)
	Loading() bool
	// Invalidate drops cached rows; callers refetch lazily after a reload.
	Invalidate()
}

// Constructor builds a store from its column group
type Constructor func(cols []types.Column, fetch Fetcher) (Store, error)

// constructors is the closed table of known targets. Targets without an
// entry never get a store.
var constructors = map[types.Target]Constructor{
	types.TargetTasks:       newTaskStore,
	types.TargetAnnotations: newAnnotationStore,
}

// Registry holds the provisioned stores, looked up by name
type Registry struct {
	mu     sync.RWMutex
	order  []string
	stores map[string]Store
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]Store)}
}

// Register adds a store under a name. Re-registering a name is rejected:
// at most one store per target exists at a time.
func (r *Registry) Register(name string, s Store) error {
	if name == "" {
		return fmt.Errorf("store name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stores[name]; exists {
		return fmt.Errorf("store already registered: %s", name)
	}
	r.stores[name] = s
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a store by name
func (r *Registry) Get(name string) (Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[name]
	return s, ok
}

// ForTarget retrieves the store provisioned for a target
func (r *Registry) ForTarget(target types.Target) (Store, bool) {
	return r.Get(target.StoreName())
}

// Names returns registered store names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// CreateDataStores provisions one store per distinct column target. Columns
// are grouped stably (first-seen target order, insertion order within a
// group); targets without a constructor are skipped. Constructor and
// registration failures propagate and are fatal to the load sequence.
func (r *Registry) CreateDataStores(cols []types.Column, fetch Fetcher) error {
	order, groups := types.GroupColumns(cols)
	for _, target := range order {
		ctor, known := constructors[target]
		if !known {
			continue
		}
		s, err := ctor(groups[target], fetch)
		if err != nil {
			return fmt.Errorf("failed to build %s store: %w", target, err)
		}
		if err := r.Register(target.StoreName(), s); err != nil {
			return err
		}
	}
	return nil
}
