package types

import (
	"bytes"
	"strconv"
)

// NavID is a nullable numeric identifier inside a navigation entry. History
// entries round-trip through the browser, which stores their values as
// strings, so NavID accepts both JSON numbers and numeric strings.
type NavID int

// UnmarshalJSON parses either 7 or "7"
func (n *NavID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*n = NavID(v)
	return nil
}

// Int returns the plain value
func (n NavID) Int() int {
	return int(n)
}

// NavRef builds a *NavID from a plain id
func NavRef(id int) *NavID {
	n := NavID(id)
	return &n
}

// NavState is the flat, serializable projection of the session's selection
// stored in a navigation history entry. Absent fields marshal as null so a
// reconstructed entry compares equal to the pushed one.
type NavState struct {
	View       *NavID `json:"view"`
	Task       *NavID `json:"task"`
	Annotation *NavID `json:"annotation"`
}

// IsZero reports whether the state references nothing
func (s NavState) IsZero() bool {
	return s.View == nil && s.Task == nil && s.Annotation == nil
}

// Equal compares two states by value
func (s NavState) Equal(o NavState) bool {
	return navIDEqual(s.View, o.View) &&
		navIDEqual(s.Task, o.Task) &&
		navIDEqual(s.Annotation, o.Annotation)
}

func navIDEqual(a, b *NavID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
