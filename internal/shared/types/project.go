package types

import "fmt"

// Project holds remote project metadata. The orchestrator refreshes it on a
// timer; only the fields it actually reads are modeled, the rest of the
// server payload is dropped at the transport boundary.
type Project struct {
	ID                 int    `json:"id"`
	Title              string `json:"title"`
	LabelingConfigured bool   `json:"labeling_configured"`
	TaskCount          int    `json:"task_count"`
	AnnotationCount    int    `json:"annotation_count"`
}

// Validate checks the minimal invariants the orchestrator relies on
func (p *Project) Validate() error {
	if p.ID == 0 {
		return fmt.Errorf("project has no id")
	}
	return nil
}

// Action describes a server-defined bulk operation invokable against a
// view's selection. The set of actions is always replaced wholesale from
// the actions() operation, never patched.
type Action struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Order  int           `json:"order"`
	Dialog *ActionDialog `json:"dialog,omitempty"`
}

// ActionDialog carries the confirmation prompt some actions require the UI
// to show before invocation. The orchestrator passes it through untouched.
type ActionDialog struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Validate checks the minimal invariants for an action descriptor
func (a *Action) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("action has no id")
	}
	return nil
}
