// Package testutil provides shared fakes for exercising the session
// orchestrator without a live annotation server.
package testutil

import (
	"context"
	"sync"

	"github.com/labelboard/backend/internal/shared/envelope"
	"github.com/labelboard/backend/internal/shared/types"
)

// Call records one remote invocation
type Call struct {
	Op     string
	Params map[string]string
	Body   interface{}
}

// Remote is a scripted stand-in for the annotation API client. Operations
// resolve from the Results table; unknown operations succeed with an empty
// body. Safe for concurrent use.
type Remote struct {
	mu      sync.Mutex
	results map[string]*envelope.Result
	errs    map[string]error
	calls   []Call
}

// NewRemote creates an empty scripted remote
func NewRemote() *Remote {
	return &Remote{
		results: make(map[string]*envelope.Result),
		errs:    make(map[string]error),
	}
}

// StandardBackend scripts the full load sequence: a configured project, one
// bulk action, columns for both targets, a single tasks view, and task 7
// carrying annotation 3.
func StandardBackend() *Remote {
	r := NewRemote()
	r.Script("project", envelope.OK(200, map[string]interface{}{
		"id": 1, "title": "Product Reviews", "labeling_configured": true, "task_count": 2,
	}))
	r.Script("actions", envelope.OK(200, map[string]interface{}{
		"actions": []interface{}{
			map[string]interface{}{"id": "delete_tasks", "title": "Delete tasks", "order": 1},
		},
	}))
	r.Script("columns", envelope.OK(200, map[string]interface{}{
		"columns": []interface{}{
			map[string]interface{}{"id": "id", "title": "ID", "target": "tasks", "type": "number"},
			map[string]interface{}{"id": "data", "title": "Data", "target": "tasks", "type": "text"},
			map[string]interface{}{"id": "id", "title": "ID", "target": "annotations", "type": "number"},
		},
	}))
	r.Script("views", envelope.OK(200, map[string]interface{}{
		"views": []interface{}{
			map[string]interface{}{"id": 1, "title": "Default", "target": "tasks", "ordering": []interface{}{"-id"}},
		},
	}))
	r.Script("task", envelope.OK(200, map[string]interface{}{
		"id": 7,
		"annotations": []interface{}{
			map[string]interface{}{"id": 3, "task_id": 7},
		},
	}))
	r.Script("invokeAction", envelope.OK(200, map[string]interface{}{"processed": 2}))
	return r
}

// Script sets the envelope an operation resolves to
func (r *Remote) Script(op string, result *envelope.Result) {
	r.mu.Lock()
	r.results[op] = result
	delete(r.errs, op)
	r.mu.Unlock()
}

// Fault makes an operation fail at the transport level
func (r *Remote) Fault(op string, err error) {
	r.mu.Lock()
	r.errs[op] = err
	r.mu.Unlock()
}

// Call implements the session's remote dependency
func (r *Remote) Call(_ context.Context, op string, params map[string]string, body interface{}) (*envelope.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: op, Params: params, Body: body})
	if err, ok := r.errs[op]; ok {
		return nil, err
	}
	if result, ok := r.results[op]; ok {
		return result, nil
	}
	return envelope.OK(200, map[string]interface{}{}), nil
}

// Calls returns a copy of the invocation log
func (r *Remote) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times an operation was invoked
func (r *Remote) Count(op string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// UI records the session's user-facing side effects. Confirm answers with
// the Accept flag.
type UI struct {
	mu            sync.Mutex
	notifications []types.Notification
	confirms      []types.Confirmation

	Accept bool
}

// NewUI creates a recording UI that declines confirmations
func NewUI() *UI {
	return &UI{}
}

// Notify implements the session's UI dependency
func (u *UI) Notify(n types.Notification) {
	u.mu.Lock()
	u.notifications = append(u.notifications, n)
	u.mu.Unlock()
}

// Confirm implements the session's UI dependency
func (u *UI) Confirm(_ context.Context, c types.Confirmation) bool {
	u.mu.Lock()
	u.confirms = append(u.confirms, c)
	u.mu.Unlock()
	return u.Accept
}

// Notifications returns a copy of the recorded toasts
func (u *UI) Notifications() []types.Notification {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]types.Notification, len(u.notifications))
	copy(out, u.notifications)
	return out
}

// Confirmations returns a copy of the recorded blocking prompts
func (u *UI) Confirmations() []types.Confirmation {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]types.Confirmation, len(u.confirms))
	copy(out, u.confirms)
	return out
}
