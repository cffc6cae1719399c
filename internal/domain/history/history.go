package history

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/labelboard/backend/internal/infrastructure/logging"
	"github.com/labelboard/backend/internal/shared/types"
)

// Navigator abstracts the navigation history store
type Navigator interface {
	// Navigate pushes a new history entry.
	Navigate(state types.NavState)
	// OnChange registers a listener for back/forward movement and returns
	// a detach function.
	OnChange(fn func(types.NavState)) func()
	// Current returns the entry under the cursor.
	Current() types.NavState
}

// Selection is the slice of the session the synchronizer drives when a
// navigation event restores an earlier entry.
type Selection interface {
	SelectView(id int) error
	// Reenter restores a labeling selection with history pushes suppressed.
	Reenter(ctx context.Context, taskID int, annotationID *int) error
	CloseLabeling(ctx context.Context)
}

// Synchronizer maintains the two-way mapping between session selection and
// navigation entries. Forward: Push records selection changes. Reverse: a
// back/forward event reconstructs the selection, with pushes swallowed for
// the duration so restoring an entry never rewrites history.
type Synchronizer struct {
	nav    Navigator
	sel    Selection
	detach func()

	mu        sync.Mutex
	logger    *logging.Logger // Protected by mu
	last      types.NavState  // Protected by mu
	restoring bool            // Protected by mu
}

// NewSynchronizer wires a navigator to a selection
func NewSynchronizer(nav Navigator, sel Selection, logger *logging.Logger) *Synchronizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Synchronizer{nav: nav, sel: sel, logger: logger}
}

// WithLogger attaches a logger. Safe to call after Start.
func (s *Synchronizer) WithLogger(logger *logging.Logger) *Synchronizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
	return s
}

// Start attaches the reverse listener
func (s *Synchronizer) Start() {
	if s.detach != nil {
		return
	}
	s.detach = s.nav.OnChange(s.restore)
}

// Close detaches the listener; idempotent
func (s *Synchronizer) Close() {
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
}

// Push records a selection change as a navigation entry. Consecutive
// identical states collapse into one entry, and pushes arriving while a
// restore is in progress are dropped: the selection changes a restore
// causes must not truncate the forward history being navigated.
func (s *Synchronizer) Push(state types.NavState) {
	s.mu.Lock()
	if s.restoring || state.Equal(s.last) {
		s.mu.Unlock()
		return
	}
	s.last = state
	s.mu.Unlock()
	s.nav.Navigate(state)
}

// restore rebuilds session selection from a navigation entry
func (s *Synchronizer) restore(state types.NavState) {
	s.mu.Lock()
	logger := s.logger
	s.last = state
	s.restoring = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.restoring = false
		s.mu.Unlock()
	}()

	ctx := context.Background()

	if state.View != nil {
		if err := s.sel.SelectView(state.View.Int()); err != nil {
			logger.Warn("failed to restore view", zap.Int("view", state.View.Int()), zap.Error(err))
		}
	}

	if state.Task == nil {
		s.sel.CloseLabeling(ctx)
		return
	}

	var annotation *int
	if state.Annotation != nil {
		id := state.Annotation.Int()
		annotation = &id
	}
	if err := s.sel.Reenter(ctx, state.Task.Int(), annotation); err != nil {
		logger.Warn("failed to restore selection", zap.Int("task", state.Task.Int()), zap.Error(err))
	}
}
