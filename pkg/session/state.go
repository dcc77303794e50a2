package session

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// DefaultTransitionDelay is the pause between a successful navigation request
// and the section index actually changing, matching the slide animation of
// the rendered view.
const DefaultTransitionDelay = 300 * time.Millisecond

// Phase describes where the section transition state machine is.
type Phase int

const (
	// PhaseIdle means no transition has happened yet.
	PhaseIdle Phase = iota
	// PhaseTransitioning means a transition was accepted and the index will
	// change once the delay elapses. Further navigation is ignored.
	PhaseTransitioning
	// PhaseSettled means the last transition completed.
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTransitioning:
		return "transitioning"
	case PhaseSettled:
		return "settled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Direction is the direction of the most recent transition.
type Direction string

const (
	DirectionNone     Direction = ""
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// Option configures a State.
type Option func(*State)

// WithTransitionDelay overrides DefaultTransitionDelay. A zero or negative
// delay applies transitions synchronously.
func WithTransitionDelay(delay time.Duration) Option {
	return func(s *State) {
		s.delay = delay
	}
}

// State is the in-memory form session: the fetched schema, the active section,
// the collected values and the field errors. It doubles as the pagination
// controller. State is safe for concurrent use.
type State struct {
	mu sync.Mutex

	schema model.FormSchema
	index  int
	values model.Values
	errors model.ErrorMap

	phase     Phase
	direction Direction
	target    int
	settled   chan struct{}
	delay     time.Duration

	submitting bool
	submitted  bool
}

// New initialises a session for schema with every field set to its zero
// value and the first section active.
func New(schema model.FormSchema, options ...Option) (*State, error) {
	if len(schema.Sections) == 0 {
		return nil, ErrNoSections
	}

	s := &State{
		schema: schema,
		values: model.NewValues(schema),
		errors: make(model.ErrorMap),
		delay:  DefaultTransitionDelay,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Schema returns the schema the session was created with.
func (s *State) Schema() model.FormSchema {
	return s.schema
}

// Index returns the active section index.
func (s *State) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Len returns the number of sections.
func (s *State) Len() int {
	return len(s.schema.Sections)
}

// Progress returns (index+1)/sections*100 rounded to the nearest integer.
func (s *State) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

func (s *State) progressLocked() int {
	return int(math.Round(float64(s.index+1) / float64(len(s.schema.Sections)) * 100))
}

// Values returns a copy of the collected values.
func (s *State) Values() model.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Clone()
}

// Errors returns a copy of the current field errors.
func (s *State) Errors() model.ErrorMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors.Clone()
}

// Change applies one input-change event. Checkbox fields toggle raw in their
// selection; every other type stores raw as-is. The field's error is cleared
// without re-validating; validation reruns on the next navigation attempt.
func (s *State) Change(fieldID, raw string) error {
	field, ok := s.schema.Field(fieldID)
	if !ok {
		return fmt.Errorf("%w %q", model.ErrUnknownField, fieldID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if field.Type.MultiValued() {
		s.values[fieldID] = s.values[fieldID].Toggle(raw)
	} else {
		s.values[fieldID] = model.TextValue(raw)
	}
	delete(s.errors, fieldID)
	return nil
}

// SetSelection brings a checkbox field to the given selection by toggling
// each option whose membership differs, in option order. Fields that are not
// multi-valued receive the first entry (or "") as a plain change. Nothing
// happens, and the error stays, when the selection is already current.
func (s *State) SetSelection(fieldID string, selected []string) error {
	field, ok := s.schema.Field(fieldID)
	if !ok {
		return fmt.Errorf("%w %q", model.ErrUnknownField, fieldID)
	}

	if !field.Type.MultiValued() {
		next := ""
		if len(selected) > 0 {
			next = selected[0]
		}
		s.mu.Lock()
		current := s.values[fieldID].String()
		s.mu.Unlock()
		if current == next {
			return nil
		}
		return s.Change(fieldID, next)
	}

	want := make(map[string]struct{}, len(selected))
	for _, v := range selected {
		want[v] = struct{}{}
	}

	s.mu.Lock()
	current := s.values[fieldID]
	s.mu.Unlock()

	for _, option := range field.Options {
		_, wanted := want[option.Value]
		if wanted == current.Contains(option.Value) {
			continue
		}
		if err := s.Change(fieldID, option.Value); err != nil {
			return err
		}
	}
	return nil
}

// Next validates the active section and, when every field passes, starts a
// forward transition. Failures are merged into the error map and returned as
// a *ValidationError; the index does not move.
func (s *State) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseTransitioning {
		return ErrTransitionPending
	}
	if s.index+1 >= len(s.schema.Sections) {
		return ErrLastSection
	}
	if err := s.validateActiveLocked(); err != nil {
		return err
	}
	s.startTransitionLocked(s.index+1, DirectionForward)
	return nil
}

// Prev starts a backward transition without validating. Values and errors of
// the section being left are preserved.
func (s *State) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseTransitioning {
		return ErrTransitionPending
	}
	if s.index == 0 {
		return ErrFirstSection
	}
	s.startTransitionLocked(s.index-1, DirectionBackward)
	return nil
}

// AwaitSettled blocks until the pending transition, if any, has been applied.
func (s *State) AwaitSettled(ctx context.Context) error {
	s.mu.Lock()
	done := s.settled
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BeginSubmit validates the last section and marks a submission in flight.
// It returns a snapshot of every collected value for the remote call. Callers
// must pair a successful BeginSubmit with FinishSubmit.
func (s *State) BeginSubmit() (model.Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseTransitioning {
		return nil, ErrTransitionPending
	}
	if s.index != len(s.schema.Sections)-1 {
		return nil, ErrNotLastSection
	}
	if s.submitting {
		return nil, ErrSubmitInFlight
	}
	if err := s.validateActiveLocked(); err != nil {
		return nil, err
	}

	s.submitting = true
	return s.values.Clone(), nil
}

// FinishSubmit clears the in-flight flag. A nil err marks the form submitted.
func (s *State) FinishSubmit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submitting = false
	if err == nil {
		s.submitted = true
	}
}

func (s *State) validateActiveLocked() error {
	fields := s.schema.Sections[s.index].Fields
	failures := validation.Section(s.values, fields)
	if len(failures) > 0 {
		for id, msg := range failures {
			s.errors[id] = msg
		}
		return &ValidationError{Section: s.index, Errors: failures}
	}
	for _, field := range fields {
		delete(s.errors, field.ID)
	}
	return nil
}

func (s *State) startTransitionLocked(target int, direction Direction) {
	done := make(chan struct{})
	s.phase = PhaseTransitioning
	s.direction = direction
	s.target = target
	s.settled = done

	if s.delay <= 0 {
		s.settleLocked(done)
		return
	}
	time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.settleLocked(done)
	})
}

func (s *State) settleLocked(done chan struct{}) {
	if s.settled != done {
		return
	}
	s.index = s.target
	s.phase = PhaseSettled
	s.settled = nil
	close(done)
}
