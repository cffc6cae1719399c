package session

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/labelboard/backend/internal/events"
	"github.com/labelboard/backend/internal/shared/types"
)

// Load runs the initial sequence, strictly in order: project metadata,
// available actions, column definitions, store provisioning, view
// definitions, pending navigation state, polling. Transport faults and
// store constructor failures abort it; operational failures are absorbed
// by the call wrapper and leave the corresponding piece empty.
func (s *Session) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.fetchProject(ctx); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if err := s.fetchActions(ctx); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	columns, err := s.fetchColumns(ctx)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if err := s.stores.CreateDataStores(columns, s.fetchTask); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	defs, err := s.fetchViews(ctx)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	s.views.Apply(defs)
	s.wireReloads()

	// Only after views exist can a pending navigation entry resolve.
	s.resolvePending(ctx)

	s.StartPolling()
	s.logger.Info("session loaded",
		zap.Int("actions", len(s.Actions())),
		zap.Strings("stores", s.stores.Names()),
	)
	return nil
}

// StartPolling arms the metadata refresh loop; calling it again while a
// cycle is scheduled is a no-op, as is calling it on a session created
// with polling disabled. It reports whether a new chain started.
func (s *Session) StartPolling() bool {
	if !s.polling {
		return false
	}
	return s.poll.Start()
}

// Polling reports whether the refresh loop is armed
func (s *Session) Polling() bool {
	return s.poll.Active()
}

func (s *Session) pollCycle(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.RecordPollCycle()
	}
	if err := s.fetchProject(ctx); err != nil {
		s.logger.Warn("project refresh failed", zap.Error(err))
	}
}

// fetchProject refreshes project metadata. Operational failures are
// absorbed (the wrapper already notified); a decode or validation problem
// on a success body is an error because everything downstream reads the
// project.
func (s *Session) fetchProject(ctx context.Context) error {
	result, err := s.apiCall(ctx, "project", nil, nil)
	if err != nil {
		return err
	}
	if result.Failed() {
		return nil
	}

	var project types.Project
	if err := result.Decode(&project); err != nil {
		return fmt.Errorf("failed to decode project: %w", err)
	}
	if err := project.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	s.mu.Lock()
	s.project = &project
	s.mu.Unlock()

	s.bus.Publish(events.TypeProjectUpdated, &project)
	return nil
}

func (s *Session) fetchColumns(ctx context.Context) ([]types.Column, error) {
	result, err := s.apiCall(ctx, "columns", nil, nil)
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return nil, nil
	}

	var decoded struct {
		Columns []types.Column `json:"columns"`
	}
	if err := result.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode columns: %w", err)
	}
	return decoded.Columns, nil
}

func (s *Session) fetchViews(ctx context.Context) ([]types.ViewDef, error) {
	result, err := s.apiCall(ctx, "views", nil, nil)
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return nil, nil
	}

	var decoded struct {
		Views []types.ViewDef `json:"views"`
	}
	if err := result.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode views: %w", err)
	}
	return decoded.Views, nil
}

// fetchTask is the Fetcher the task store gets. A 404 resolves to a nil
// task; an operational failure surfaces as an error so the selection flow
// stops (the wrapper already raised the notification).
func (s *Session) fetchTask(ctx context.Context, id int) (*types.Task, error) {
	result, err := s.apiCall(ctx, "task", map[string]string{"id": strconv.Itoa(id)}, nil)
	if err != nil {
		return nil, err
	}
	if result.NotFound() {
		return nil, nil
	}
	if result.Failed() {
		return nil, fmt.Errorf("task %d fetch failed: %s", id, result.Error)
	}

	var task types.Task
	if err := result.Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to decode task %d: %w", id, err)
	}
	return &task, nil
}

// wireReloads points each view's reload hook at its target store
func (s *Session) wireReloads() {
	for _, v := range s.views.List() {
		target := v.Target()
		v.OnReload(func(context.Context) error {
			if st, ok := s.stores.ForTarget(target); ok {
				st.Invalidate()
			}
			return nil
		})
	}
}

// resolvePending applies a navigation entry that was present before load
// (the URL-encoded selection of the original UI).
func (s *Session) resolvePending(ctx context.Context) {
	state := s.nav.Current()
	if state.IsZero() {
		return
	}

	if state.View != nil {
		if err := s.SelectView(state.View.Int()); err != nil {
			s.logger.Warn("pending view unknown", zap.Int("view", state.View.Int()))
		}
	}
	if state.Task != nil {
		var annotation *int
		if state.Annotation != nil {
			id := state.Annotation.Int()
			annotation = &id
		}
		if err := s.Reenter(ctx, state.Task.Int(), annotation); err != nil {
			s.logger.Warn("failed to resolve pending selection", zap.Error(err))
		}
	}
}
