package query

import "fmt"

// State identifies a step of the interactive query wizard.
type State string

const (
	StateAwaitingObject  State = "AwaitingObjectSelection"
	StateAwaitingSubject State = "AwaitingSubjectSelection"
	StateAwaitingFilters State = "AwaitingFilters"
	StateExecuting       State = "Executing"
	StateResultReady     State = "ResultReady"
	StateCancelled       State = "Cancelled"
)

// TransitionError reports a wizard call made from the wrong state.
type TransitionError struct {
	From State
	Call string
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Call, e.From)
}

// Session drives one query interaction as an explicit state machine:
//
//	AwaitingObjectSelection -> AwaitingSubjectSelection -> AwaitingFilters
//	    -> Executing -> ResultReady
//
// terminal on ResultReady or Cancelled (the user may abandon at any
// step). No state survives the session; a new session starts over.
//
// Each wizard step is plain data driving a transition, not a dialog
// subclass: the UI layer renders choices from ValidSubjects and the fixed
// filter sets, and calls back in here.
type Session struct {
	engine *Engine
	data   Dataset

	state      State
	descriptor Descriptor
	result     *Result
}

// NewSession starts a wizard over the given dataset.
func NewSession(engine *Engine, data Dataset) *Session {
	return &Session{engine: engine, data: data, state: StateAwaitingObject}
}

// State returns the current wizard state.
func (s *Session) State() State { return s.state }

// ChooseObject selects the query object and advances to subject
// selection.
func (s *Session) ChooseObject(o Object) error {
	if s.state != StateAwaitingObject {
		return &TransitionError{From: s.state, Call: "choose object"}
	}
	if _, ok := ValidSubjects[o]; !ok {
		return &DescriptorError{Field: "object", Message: fmt.Sprintf("unknown object %q", o)}
	}
	s.descriptor.Object = o
	s.state = StateAwaitingSubject
	return nil
}

// ChooseSubject selects the subject and advances to filter entry.
func (s *Session) ChooseSubject(sub Subject) error {
	if s.state != StateAwaitingSubject {
		return &TransitionError{From: s.state, Call: "choose subject"}
	}
	for _, valid := range ValidSubjects[s.descriptor.Object] {
		if valid == sub {
			s.descriptor.Subject = sub
			s.state = StateAwaitingFilters
			return nil
		}
	}
	return &DescriptorError{
		Field:   "subject",
		Message: fmt.Sprintf("object %q does not support subject %q", s.descriptor.Object, sub),
	}
}

// SetFilters records the filters and executes the query. On success the
// session is terminal in ResultReady; on failure it stays in
// AwaitingFilters so the user can adjust and retry.
func (s *Session) SetFilters(f Filters) (*Result, error) {
	if s.state != StateAwaitingFilters {
		return nil, &TransitionError{From: s.state, Call: "set filters"}
	}
	s.descriptor.Filters = f

	s.state = StateExecuting
	res, err := s.engine.Execute(s.data, s.descriptor)
	if err != nil {
		s.state = StateAwaitingFilters
		return nil, err
	}
	s.result = res
	s.state = StateResultReady
	return res, nil
}

// Result returns the computed result once the session is in ResultReady.
func (s *Session) Result() (*Result, error) {
	if s.state != StateResultReady {
		return nil, &TransitionError{From: s.state, Call: "read result"}
	}
	return s.result, nil
}

// Cancel abandons the session from any non-terminal state. Cancelling a
// finished or already-cancelled session is a no-op.
func (s *Session) Cancel() {
	switch s.state {
	case StateResultReady, StateCancelled:
		return
	}
	s.state = StateCancelled
}
