package session

import (
	"context"
	"fmt"

	"github.com/labelboard/backend/internal/domain/store"
	"github.com/labelboard/backend/internal/events"
	"github.com/labelboard/backend/internal/shared/types"
)

// StartOptions tunes StartLabeling
type StartOptions struct {
	// SuppressHistory skips the navigation push; the history synchronizer
	// sets it when restoring an entry so restoration never re-emits one.
	SuppressHistory bool
}

// TaskSelection addresses a task (and optionally one of its annotations)
type TaskSelection struct {
	TaskID       int
	AnnotationID *int
	PushState    bool
}

// StartLabeling is the entry into labeling. The labeling-configured flag is
// the single synchronous precondition gate: when it is off, or the project
// has not loaded yet, the user gets a blocking confirmation pointing at the
// setup screen and nothing changes; accepting it publishes a location.open
// event the client navigates on. With no item given and nothing selected
// the session switches to label streaming. Picking the already-selected
// item closes labeling (toggle).
func (s *Session) StartLabeling(ctx context.Context, item *types.Item, opts StartOptions) error {
	s.mu.Lock()
	project := s.project
	selTask := s.selectedTask
	selAnn := s.selectedAnnotation
	s.mu.Unlock()

	if project == nil || !project.LabelingConfigured {
		confirm := types.Confirmation{
			Message:    "Labeling is not configured for this project yet.",
			AcceptText: "Go to setup",
			Location:   "settings/labeling",
		}
		if s.ui.Confirm(ctx, confirm) {
			s.bus.Publish(events.TypeLocationOpen, confirm.Location)
		}
		return nil
	}

	if item == nil {
		if selTask == nil {
			s.SetMode(types.ModeLabelStream)
		}
		return nil
	}

	// A load already in flight means a selection change is pending; starting
	// another would race it.
	if st := s.currentStore(); st != nil && st.Loading() {
		return nil
	}

	taskID, annID, hasAnn := item.Resolve()
	if s.isSelected(selTask, selAnn, taskID, annID, hasAnn) {
		s.CloseLabeling(ctx)
		return nil
	}

	sel := TaskSelection{TaskID: taskID, PushState: !opts.SuppressHistory}
	if hasAnn {
		sel.AnnotationID = &annID
	}
	return s.SetTask(ctx, sel)
}

// SetTask selects a task, and an annotation within it when given. The load
// selects on completion only when both ids are present, so the UI never
// flashes a task-only state before the annotation applies. This suspends on
// network I/O; duplicate invocations are prevented by the loading guard in
// StartLabeling.
func (s *Session) SetTask(ctx context.Context, sel TaskSelection) error {
	if sel.PushState {
		s.pushSelection(&sel.TaskID, sel.AnnotationID)
	}

	tasks, ok := s.stores.ForTarget(types.TargetTasks)
	if !ok {
		return fmt.Errorf("task store not provisioned")
	}

	selectOnLoad := sel.AnnotationID != nil
	if err := tasks.Load(ctx, sel.TaskID, selectOnLoad); err != nil {
		return fmt.Errorf("failed to select task %d: %w", sel.TaskID, err)
	}
	s.ingestAnnotations(tasks, sel.TaskID)

	s.mu.Lock()
	taskID := sel.TaskID
	s.selectedTask = &taskID
	s.selectedAnnotation = sel.AnnotationID
	s.mu.Unlock()

	if sel.AnnotationID != nil {
		if anns, found := s.stores.ForTarget(types.TargetAnnotations); found {
			anns.Select(*sel.AnnotationID)
		}
		s.bus.Publish(events.TypeAnnotationSelected, *sel.AnnotationID)
	} else {
		tasks.Select(sel.TaskID)
		s.bus.Publish(events.TypeTaskSelected, sel.TaskID)
	}
	return nil
}

// UnsetTask clears the task and annotation selection and resets the
// navigation entry to the bare view.
func (s *Session) UnsetTask() {
	s.UnsetSelection()
	s.pushSelection(nil, nil)
}

// UnsetSelection clears the selection without touching navigation
func (s *Session) UnsetSelection() {
	s.mu.Lock()
	s.selectedTask = nil
	s.selectedAnnotation = nil
	s.mu.Unlock()

	for _, target := range types.KnownTargets() {
		if st, ok := s.stores.ForTarget(target); ok {
			st.Unset()
		}
	}
	s.bus.Publish(events.TypeSelectionCleared, nil)
}

// CloseLabeling leaves labeling: selection cleared, navigation reset, mode
// back to browsing.
func (s *Session) CloseLabeling(_ context.Context) {
	s.UnsetTask()
	s.SetMode(types.ModeBrowsing)
}

// SelectView switches the current view
func (s *Session) SelectView(id int) error {
	return s.views.SetCurrent(id)
}

// Reenter restores a labeling selection from a navigation entry, with the
// history push suppressed.
func (s *Session) Reenter(ctx context.Context, taskID int, annotationID *int) error {
	return s.SetTask(ctx, TaskSelection{TaskID: taskID, AnnotationID: annotationID, PushState: false})
}

// pushSelection records the selection as a navigation entry
func (s *Session) pushSelection(taskID, annotationID *int) {
	state := types.NavState{}
	if v := s.views.Current(); v != nil {
		state.View = types.NavRef(v.ID())
	}
	if taskID != nil {
		state.Task = types.NavRef(*taskID)
	}
	if annotationID != nil {
		state.Annotation = types.NavRef(*annotationID)
	}
	s.hist.Push(state)
}

// isSelected reports whether the resolved pair is exactly what is selected
func (s *Session) isSelected(selTask, selAnn *int, taskID, annID int, hasAnn bool) bool {
	if selTask == nil || *selTask != taskID {
		return false
	}
	if hasAnn {
		return selAnn != nil && *selAnn == annID
	}
	return selAnn == nil
}

// ingestAnnotations feeds a loaded task's annotations into the annotation
// store when both sides support it.
func (s *Session) ingestAnnotations(tasks store.Store, taskID int) {
	rowed, ok := tasks.(interface {
		Row(int) (*types.Task, bool)
	})
	if !ok {
		return
	}
	task, found := rowed.Row(taskID)
	if !found {
		return
	}
	anns, found := s.stores.ForTarget(types.TargetAnnotations)
	if !found {
		return
	}
	if ingestor, capable := anns.(interface{ Ingest(*types.Task) }); capable {
		ingestor.Ingest(task)
	}
}
