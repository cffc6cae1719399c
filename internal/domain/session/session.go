package session

import (
	"context"
	"sync"
	"time"

	"github.com/labelboard/backend/internal/domain/history"
	"github.com/labelboard/backend/internal/domain/store"
	"github.com/labelboard/backend/internal/domain/view"
	"github.com/labelboard/backend/internal/events"
	"github.com/labelboard/backend/internal/infrastructure/logging"
	"github.com/labelboard/backend/internal/infrastructure/monitoring"
	"github.com/labelboard/backend/internal/infrastructure/schedule"
	"github.com/labelboard/backend/internal/shared/envelope"
	"github.com/labelboard/backend/internal/shared/types"
)

// Remote invokes named operations against the annotation API
type Remote interface {
	Call(ctx context.Context, op string, params map[string]string, body interface{}) (*envelope.Result, error)
}

// UI carries the session's user-facing side effects: transient failure
// toasts and the blocking setup confirmation.
type UI interface {
	Notify(n types.Notification)
	Confirm(ctx context.Context, c types.Confirmation) bool
}

// Session is the root aggregate of the orchestrator
type Session struct {
	remote  Remote
	ui      UI
	views   *view.Hub
	stores  *store.Registry
	nav     history.Navigator
	hist    *history.Synchronizer
	bus     *events.Bus
	poll    *schedule.Task
	polling bool
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu                 sync.Mutex
	mode               types.Mode            // Protected by mu
	project            *types.Project        // Protected by mu
	loading            bool                  // Protected by mu
	actions            []types.Action        // Protected by mu; replaced wholesale
	lastErrors         map[string]*CallError // Protected by mu
	selectedTask       *int                  // Protected by mu
	selectedAnnotation *int                  // Protected by mu
}

// New creates a session. It registers itself on the navigator for
// back/forward events; Close detaches it again. A non-positive
// pollInterval disables the metadata refresh loop.
func New(remote Remote, ui UI, views *view.Hub, stores *store.Registry, nav history.Navigator, bus *events.Bus, pollInterval time.Duration) *Session {
	s := &Session{
		remote:     remote,
		ui:         ui,
		views:      views,
		stores:     stores,
		nav:        nav,
		bus:        bus,
		polling:    pollInterval > 0,
		logger:     logging.NewNop(),
		mode:       types.ModeBrowsing,
		lastErrors: make(map[string]*CallError),
	}
	s.hist = history.NewSynchronizer(nav, s, s.logger)
	s.hist.Start()
	s.poll = schedule.NewTask("project-refresh", pollInterval, s.pollCycle)
	return s
}

// WithLogger attaches a logger to the session and to its history
// synchronizer, which was built before the logger existed.
func (s *Session) WithLogger(logger *logging.Logger) *Session {
	s.logger = logger
	s.hist.WithLogger(logger)
	return s
}

// WithMetrics adds metrics tracking
func (s *Session) WithMetrics(metrics *monitoring.Metrics) *Session {
	s.metrics = metrics
	return s
}

// Mode returns the current mode
func (s *Session) Mode() types.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode transitions unconditionally; no validation beyond the enum
func (s *Session) SetMode(mode types.Mode) {
	s.mu.Lock()
	changed := s.mode != mode
	s.mode = mode
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetMode(mode)
	}
	if changed {
		s.bus.Publish(events.TypeModeChanged, mode)
	}
}

// Project returns a copy of the current project metadata, or nil before the
// first successful fetch.
func (s *Session) Project() *types.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil
	}
	p := *s.project
	return &p
}

// Loading reports whether the initial load sequence is running
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Actions returns the available bulk actions in server order
func (s *Session) Actions() []types.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]types.Action, len(s.actions))
	copy(actions, s.actions)
	return actions
}

// Selected returns the selected task and annotation ids
func (s *Session) Selected() (task *int, annotation *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedTask != nil {
		t := *s.selectedTask
		task = &t
	}
	if s.selectedAnnotation != nil {
		a := *s.selectedAnnotation
		annotation = &a
	}
	return task, annotation
}

// State snapshots the session for UI clients
func (s *Session) State() types.SessionState {
	s.mu.Lock()
	mode := s.mode
	loading := s.loading
	var project *types.Project
	if s.project != nil {
		p := *s.project
		project = &p
	}
	actions := make([]types.Action, len(s.actions))
	copy(actions, s.actions)
	task := s.selectedTask
	annotation := s.selectedAnnotation
	s.mu.Unlock()

	state := types.SessionState{
		Mode:             mode,
		Loading:          loading,
		Project:          project,
		AvailableActions: actions,
		SelectedTask:     task,
		SelectedAnnotation: annotation,
		Stores:           s.stores.Names(),
	}
	if v := s.views.Current(); v != nil {
		id := v.ID()
		state.CurrentView = &id
	}
	return state
}

// Close tears the session down: the poll timer stops and the navigation
// listener detaches. Idempotent.
func (s *Session) Close() {
	s.poll.Stop()
	s.hist.Close()
}

// currentStore resolves the store behind the current view's target
func (s *Session) currentStore() store.Store {
	v := s.views.Current()
	if v == nil {
		return nil
	}
	st, ok := s.stores.ForTarget(v.Target())
	if !ok {
		return nil
	}
	return st
}

func (s *Session) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}
