package types

import (
	"encoding/json"
	"fmt"
)

// SelectionSnapshot is the serialized form of "which rows are selected" sent
// to the server with bulk actions. It is exactly one of two shapes: all rows
// minus exclusions, or an explicit positive set. The two are never mixed.
type SelectionSnapshot struct {
	All      bool
	Excluded []int
	Included []int
}

// SelectAll builds the negative-form snapshot: everything except excluded.
// A nil excluded slice still serializes as an empty array.
func SelectAll(excluded []int) SelectionSnapshot {
	return SelectionSnapshot{All: true, Excluded: excluded}
}

// SelectOnly builds the positive-form snapshot from explicit ids
func SelectOnly(included []int) SelectionSnapshot {
	return SelectionSnapshot{All: false, Included: included}
}

// IsEmpty reports whether the snapshot selects nothing at all
func (s SelectionSnapshot) IsEmpty() bool {
	return !s.All && len(s.Included) == 0
}

// Count returns the number of explicitly listed ids (excluded or included
// depending on the shape)
func (s SelectionSnapshot) Count() int {
	if s.All {
		return len(s.Excluded)
	}
	return len(s.Included)
}

type allSnapshot struct {
	All      bool  `json:"all"`
	Excluded []int `json:"excluded"`
}

type explicitSnapshot struct {
	All      bool  `json:"all"`
	Included []int `json:"included"`
}

// MarshalJSON emits exactly one of the two wire shapes. The excluded list is
// always present (as []) in the all-form so the server never has to guess.
func (s SelectionSnapshot) MarshalJSON() ([]byte, error) {
	if s.All {
		excl := s.Excluded
		if excl == nil {
			excl = []int{}
		}
		return json.Marshal(allSnapshot{All: true, Excluded: excl})
	}
	incl := s.Included
	if incl == nil {
		incl = []int{}
	}
	return json.Marshal(explicitSnapshot{All: false, Included: incl})
}

// UnmarshalJSON accepts either shape and rejects payloads carrying both
func (s *SelectionSnapshot) UnmarshalJSON(data []byte) error {
	var probe struct {
		All      bool   `json:"all"`
		Excluded *[]int `json:"excluded"`
		Included *[]int `json:"included"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Excluded != nil && probe.Included != nil {
		return fmt.Errorf("selection carries both included and excluded")
	}
	s.All = probe.All
	s.Excluded = nil
	s.Included = nil
	if probe.Excluded != nil {
		s.Excluded = *probe.Excluded
	}
	if probe.Included != nil {
		s.Included = *probe.Included
	}
	return nil
}
