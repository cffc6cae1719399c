package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/labelboard/backend/internal/shared/types"
)

// annotationStore holds annotation rows and the annotation selection.
// Annotations arrive embedded in fetched tasks, so the store has no remote
// operation of its own: rows are ingested when a task loads.
type annotationStore struct {
	columns []types.Column

	mu       sync.RWMutex
	rows     map[int]*types.Annotation // Protected by mu
	selected *int                      // Protected by mu
	loading  atomic.Bool
}

func newAnnotationStore(cols []types.Column, _ Fetcher) (Store, error) {
	return &annotationStore{
		columns: cols,
		rows:    make(map[int]*types.Annotation),
	}, nil
}

func (s *annotationStore) Target() types.Target {
	return types.TargetAnnotations
}

func (s *annotationStore) Columns() []types.Column {
	cols := make([]types.Column, len(s.columns))
	copy(cols, s.columns)
	return cols
}

// Ingest absorbs the annotations embedded in a loaded task
func (s *annotationStore) Ingest(task *types.Task) {
	if task == nil {
		return
	}
	s.mu.Lock()
	for i := range task.Annotations {
		ann := task.Annotations[i]
		s.rows[ann.ID] = &ann
	}
	s.mu.Unlock()
}

// Load resolves locally; there is no single-annotation remote operation.
func (s *annotationStore) Load(_ context.Context, id int, selectOnLoad bool) error {
	if selectOnLoad {
		s.Select(id)
	}
	return nil
}

func (s *annotationStore) Select(id int) {
	s.mu.Lock()
	s.selected = &id
	s.mu.Unlock()
}

func (s *annotationStore) Unset() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

func (s *annotationStore) Selected() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return 0, false
	}
	return *s.selected, true
}

func (s *annotationStore) Loading() bool {
	return s.loading.Load()
}

func (s *annotationStore) Invalidate() {
	s.mu.Lock()
	s.rows = make(map[int]*types.Annotation)
	s.mu.Unlock()
}

// Row returns an ingested annotation by id
func (s *annotationStore) Row(id int) (*types.Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ann, ok := s.rows[id]
	return ann, ok
}
