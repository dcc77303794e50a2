package session

import "github.com/goliatone/go-formflow/pkg/model"

// Snapshot is a consistent, detached copy of the session used by renderers.
type Snapshot struct {
	FormTitle  string
	Version    string
	Index      int
	Total      int
	Progress   int
	Section    model.Section
	Values     model.Values
	Errors     model.ErrorMap
	Phase      Phase
	Direction  Direction
	Submitting bool
	Submitted  bool
}

// First reports whether the active section is the first one.
func (s Snapshot) First() bool {
	return s.Index == 0
}

// Last reports whether the active section is the last one.
func (s Snapshot) Last() bool {
	return s.Index == s.Total-1
}

// Snapshot captures the current session state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		FormTitle:  s.schema.Title,
		Version:    s.schema.Version,
		Index:      s.index,
		Total:      len(s.schema.Sections),
		Progress:   s.progressLocked(),
		Section:    s.schema.Sections[s.index],
		Values:     s.values.Clone(),
		Errors:     s.errors.Clone(),
		Phase:      s.phase,
		Direction:  s.direction,
		Submitting: s.submitting,
		Submitted:  s.submitted,
	}
}
