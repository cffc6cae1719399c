package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/labelboard/backend/internal/shared/types"
)

// taskStore holds loaded task rows and the task selection for the grid
type taskStore struct {
	fetch   Fetcher
	columns []types.Column

	mu       sync.RWMutex
	rows     map[int]*types.Task // Protected by mu
	selected *int                // Protected by mu
	loading  atomic.Bool
}

func newTaskStore(cols []types.Column, fetch Fetcher) (Store, error) {
	if fetch == nil {
		return nil, fmt.Errorf("task store requires a fetcher")
	}
	return &taskStore{
		fetch:   fetch,
		columns: cols,
		rows:    make(map[int]*types.Task),
	}, nil
}

func (s *taskStore) Target() types.Target {
	return types.TargetTasks
}

func (s *taskStore) Columns() []types.Column {
	cols := make([]types.Column, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// Load fetches one task. The loading flag is the in-flight guard the
// session consults before initiating another selection change; a Load
// racing an existing one returns without fetching.
func (s *taskStore) Load(ctx context.Context, id int, selectOnLoad bool) error {
	if !s.loading.CompareAndSwap(false, true) {
		return nil
	}
	defer s.loading.Store(false)

	task, err := s.fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load task %d: %w", id, err)
	}
	if task == nil {
		return nil
	}

	s.mu.Lock()
	s.rows[task.ID] = task
	if selectOnLoad {
		s.selected = &task.ID
	}
	s.mu.Unlock()
	return nil
}

func (s *taskStore) Select(id int) {
	s.mu.Lock()
	s.selected = &id
	s.mu.Unlock()
}

func (s *taskStore) Unset() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

func (s *taskStore) Selected() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return 0, false
	}
	return *s.selected, true
}

func (s *taskStore) Loading() bool {
	return s.loading.Load()
}

func (s *taskStore) Invalidate() {
	s.mu.Lock()
	s.rows = make(map[int]*types.Task)
	s.mu.Unlock()
}

// Row returns a loaded task by id
func (s *taskStore) Row(id int) (*types.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.rows[id]
	return task, ok
}
