package types

// Task is one reviewable data item with whatever annotations the server
// returned alongside it. Row payloads stay opaque; the orchestrator only
// routes them.
type Task struct {
	ID          int                    `json:"id"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Annotations []Annotation           `json:"annotations,omitempty"`
}

// Annotation is one labeling result attached to a task
type Annotation struct {
	ID     int                    `json:"id"`
	TaskID int                    `json:"task_id"`
	Result map[string]interface{} `json:"result,omitempty"`
}

// Item identifies what the user picked to start labeling: a task row, or an
// annotation within one. TaskID is set only when the item is an annotation;
// an item without a task reference is itself the task.
type Item struct {
	ID     int  `json:"id"`
	TaskID *int `json:"task_id,omitempty"`
}

// Resolve splits the item into the task/annotation pair it selects
func (i Item) Resolve() (taskID int, annotationID int, hasAnnotation bool) {
	if i.TaskID != nil {
		return *i.TaskID, i.ID, true
	}
	return i.ID, 0, false
}
