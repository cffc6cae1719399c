package types

// Filter is one predicate of a view's filter set. Column semantics are the
// server's business; the orchestrator carries filters opaquely into action
// payloads.
type Filter struct {
	Column   string      `json:"column" yaml:"column"`
	Operator string      `json:"operator" yaml:"operator"`
	Value    interface{} `json:"value,omitempty" yaml:"value,omitempty"`
}

// Filters is a view's filter conjunction plus its items
type Filters struct {
	Conjunction string   `json:"conjunction" yaml:"conjunction"`
	Items       []Filter `json:"items" yaml:"items"`
}

// FilterConjunctionAnd is the default conjunction for empty filter sets
const FilterConjunctionAnd = "and"
