package statemachine

import (
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
)

// TransitionPayload carries additional data with a transition event.
type TransitionPayload struct {
	To     Phase
	Reason string
}

var sharedMachine = sync.OnceValues(NewPlanningMachine)

// Lifecycle drives one planning request through its phases.
type Lifecycle struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewLifecycle creates and starts a lifecycle for ctx.
func NewLifecycle(ctx *Context) (*Lifecycle, error) {
	machine, err := sharedMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to build planning machine: %w", err)
	}
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	interp.Start()
	ctx.Phase = Phase(interp.State().Value)
	return &Lifecycle{interp: interp, ctx: ctx}, nil
}

// Phase returns the current phase.
func (l *Lifecycle) Phase() Phase {
	return Phase(l.interp.State().Value)
}

// Transition moves the lifecycle to phase to.
func (l *Lifecycle) Transition(to Phase, reason string) error {
	from := l.Phase()
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	l.interp.Send(statekit.Event{
		Type:    EventFor(to),
		Payload: TransitionPayload{To: to, Reason: reason},
	})

	if got := l.Phase(); got != to {
		return fmt.Errorf("%w: %s to %s rejected, still %s", ErrInvalidTransition, from, to, got)
	}
	return nil
}

// Fail moves the lifecycle to failed unless it is already terminal.
func (l *Lifecycle) Fail(reason string) {
	if l.Phase().Terminal() {
		return
	}
	_ = l.Transition(PhaseFailed, reason)
}

// Done reports whether the lifecycle reached a terminal phase.
func (l *Lifecycle) Done() bool {
	return l.interp.Done()
}

// History returns the recorded transitions.
func (l *Lifecycle) History() []Transition {
	return l.ctx.History
}

// Context returns the lifecycle context.
func (l *Lifecycle) Context() *Context {
	return l.ctx
}

// Stop stops the interpreter.
func (l *Lifecycle) Stop() {
	l.interp.Stop()
}
