package types

// Mode represents the session's interaction mode
type Mode string

const (
	// ModeBrowsing is the default grid/list mode over a collection.
	ModeBrowsing Mode = "browsing"
	// ModeLabelStream feeds items to the user one after another without an
	// explicit selection.
	ModeLabelStream Mode = "labelstream"
)

// Valid reports whether m is a known mode value
func (m Mode) Valid() bool {
	switch m {
	case ModeBrowsing, ModeLabelStream:
		return true
	default:
		return false
	}
}

// Target is the closed enumeration of entity types a view or column
// operates over. Stores are provisioned per target.
type Target string

const (
	TargetTasks       Target = "tasks"
	TargetAnnotations Target = "annotations"
)

// StoreName derives the registry name a target's store is registered under
func (t Target) StoreName() string {
	return string(t) + "Store"
}

// KnownTargets returns all targets in declaration order
func KnownTargets() []Target {
	return []Target{TargetTasks, TargetAnnotations}
}
