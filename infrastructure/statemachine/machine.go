// Package statemachine tracks the lifecycle of a planning request with statekit.
package statemachine

import (
	"errors"
	"slices"
	"time"

	"github.com/felixgeelhaar/statekit"
)

// ErrInvalidTransition is returned when a lifecycle transition is not allowed.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Phase is a step in the lifecycle of a planning request.
type Phase string

// Lifecycle phases.
const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSearching  Phase = "searching"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether no transition leaves the phase.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// allowed lists the phases reachable from each phase. Validating may
// jump straight to succeeded when a memoised plan is reused.
var allowed = map[Phase][]Phase{
	PhaseIdle:       {PhaseValidating, PhaseFailed},
	PhaseValidating: {PhaseSearching, PhaseSucceeded, PhaseFailed},
	PhaseSearching:  {PhaseSucceeded, PhaseFailed},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Phase) bool {
	return slices.Contains(allowed[from], to)
}

// Transition records one lifecycle change.
type Transition struct {
	From   Phase
	To     Phase
	Reason string
	At     time.Time
}

// Context carries lifecycle data through the state machine.
type Context struct {
	RequestID string
	Phase     Phase
	History   []Transition
	// OnTransition, when set, observes every recorded transition.
	OnTransition func(Transition)
}

// NewContext creates a lifecycle context for a request.
func NewContext(requestID string) *Context {
	return &Context{RequestID: requestID, Phase: PhaseIdle}
}

const (
	stateIdle       = statekit.StateID(PhaseIdle)
	stateValidating = statekit.StateID(PhaseValidating)
	stateSearching  = statekit.StateID(PhaseSearching)
	stateSucceeded  = statekit.StateID(PhaseSucceeded)
	stateFailed     = statekit.StateID(PhaseFailed)
)

// NewPlanningMachine creates the planning request statechart.
func NewPlanningMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("planning").
		WithInitial(stateIdle).
		WithContext(&Context{}).
		WithAction("recordTransition", recordTransition).
		WithGuard("canTransition", guardCanTransition).
		State(stateIdle).
		On("VALIDATE").Target(stateValidating).Guard("canTransition").Do("recordTransition").
		On("FAIL").Target(stateFailed).Do("recordTransition").
		Done().
		State(stateValidating).
		On("SEARCH").Target(stateSearching).Guard("canTransition").Do("recordTransition").
		On("SUCCEED").Target(stateSucceeded).Guard("canTransition").Do("recordTransition").
		On("FAIL").Target(stateFailed).Do("recordTransition").
		Done().
		State(stateSearching).
		On("SUCCEED").Target(stateSucceeded).Guard("canTransition").Do("recordTransition").
		On("FAIL").Target(stateFailed).Do("recordTransition").
		Done().
		State(stateSucceeded).
		Final().
		Done().
		State(stateFailed).
		Final().
		Done().
		Build()
}

// EventFor returns the event type that moves the machine into phase p.
func EventFor(p Phase) statekit.EventType {
	switch p {
	case PhaseValidating:
		return "VALIDATE"
	case PhaseSearching:
		return "SEARCH"
	case PhaseSucceeded:
		return "SUCCEED"
	case PhaseFailed:
		return "FAIL"
	default:
		return statekit.EventType(p)
	}
}
