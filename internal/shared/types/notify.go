package types

import "time"

// Severity classifies a notification for the UI
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notification is the payload of the transient, non-blocking toast the UI
// shows for operational failures.
type Notification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Operation string    `json:"operation,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Confirmation is the payload of a blocking prompt. Location names where the
// UI should navigate when the user accepts.
type Confirmation struct {
	Message    string `json:"message"`
	AcceptText string `json:"accept_text,omitempty"`
	Location   string `json:"location,omitempty"`
}

// SessionState is the read-only snapshot of the orchestrator served to UI
// clients. Pointer fields are nil when nothing is selected.
type SessionState struct {
	Mode               Mode     `json:"mode"`
	Loading            bool     `json:"loading"`
	Project            *Project `json:"project,omitempty"`
	CurrentView        *int     `json:"current_view,omitempty"`
	SelectedTask       *int     `json:"selected_task,omitempty"`
	SelectedAnnotation *int     `json:"selected_annotation,omitempty"`
	AvailableActions   []Action `json:"available_actions"`
	Stores             []string `json:"stores"`
}
