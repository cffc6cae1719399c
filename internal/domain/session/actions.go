package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/labelboard/backend/internal/events"
	"github.com/labelboard/backend/internal/shared/envelope"
	"github.com/labelboard/backend/internal/shared/types"
)

// InvokeOptions tunes the action pipeline
type InvokeOptions struct {
	// SkipReload leaves the view's data and selection untouched after the
	// remote call.
	SkipReload bool
	// Extra merges additional body fields collected by an action's dialog.
	Extra map[string]interface{}
}

// actionPayload is the request body assembled from the view at invocation
// time.
type actionPayload struct {
	Ordering      []string                `json:"ordering"`
	SelectedItems types.SelectionSnapshot `json:"selectedItems"`
	Filters       types.Filters           `json:"filters"`
	Extra         map[string]interface{}  `json:"extra,omitempty"`
}

// InvokeAction runs one bulk action against the current view's selection.
// Known actions take the view's cooperative lock before anything is sent;
// the lock is released on a guaranteed-cleanup path, so a failing reload
// can never leave the view locked. The reload sequence (reload, project
// refresh, clear selection, in that order) starts only after the remote
// call completes.
func (s *Session) InvokeAction(ctx context.Context, actionID string, opts InvokeOptions) (*envelope.Result, error) {
	v := s.views.Current()
	if v == nil {
		return nil, fmt.Errorf("no current view")
	}

	if s.hasAction(actionID) {
		v.Lock()
	}
	// Unlocking an unlocked view is a no-op, so this is safe when the lock
	// was never taken.
	defer v.Unlock()

	start := time.Now()
	body := actionPayload{
		Ordering:      v.Ordering(),
		SelectedItems: v.Snapshot(),
		Filters:       v.Filters(),
		Extra:         opts.Extra,
	}

	result, err := s.apiCall(ctx, "invokeAction", map[string]string{
		"id":    actionID,
		"tabID": strconv.Itoa(v.ID()),
	}, body)
	if err != nil {
		s.observeAction(actionID, "fault", start)
		return nil, err
	}

	if !opts.SkipReload {
		if rerr := v.Reload(ctx); rerr != nil {
			s.logger.Warn("view reload failed after action",
				zap.String("action", actionID),
				zap.Error(rerr),
			)
		}
		if perr := s.fetchProject(ctx); perr != nil {
			s.logger.Warn("project refresh failed after action",
				zap.String("action", actionID),
				zap.Error(perr),
			)
		}
		v.ClearSelection()
	}

	outcome := "ok"
	if result.Failed() {
		outcome = "error"
	}
	s.observeAction(actionID, outcome, start)
	s.bus.Publish(events.TypeActionInvoked, actionID)
	return result, nil
}

// hasAction reports whether the id is among the known bulk actions; those
// are the ones that need the view lock.
func (s *Session) hasAction(actionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.actions {
		if a.ID == actionID {
			return true
		}
	}
	return false
}

// fetchActions replaces the action set wholesale from the server
func (s *Session) fetchActions(ctx context.Context) error {
	result, err := s.apiCall(ctx, "actions", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch actions: %w", err)
	}
	if result.Failed() {
		return nil
	}

	var decoded struct {
		Actions []types.Action `json:"actions"`
	}
	if err := result.Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode actions: %w", err)
	}

	actions := make([]types.Action, 0, len(decoded.Actions))
	for _, a := range decoded.Actions {
		if err := a.Validate(); err != nil {
			s.logger.Warn("dropping invalid action", zap.Error(err))
			continue
		}
		actions = append(actions, a)
	}

	s.mu.Lock()
	s.actions = actions
	s.mu.Unlock()

	s.bus.Publish(events.TypeActionsUpdated, actions)
	return nil
}

func (s *Session) observeAction(actionID, outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordAction(actionID, outcome, time.Since(start))
	}
}
