package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// guardCanTransition checks the lifecycle table. Guards receive the
// context by value, which for this machine is *Context.
func guardCanTransition(ctx *Context, event statekit.Event) bool {
	if ctx == nil {
		return false
	}
	return CanTransition(ctx.Phase, targetOf(event))
}

// targetOf reads the target phase from the payload, falling back to
// the event type.
func targetOf(event statekit.Event) Phase {
	if payload, ok := event.Payload.(TransitionPayload); ok && payload.To != "" {
		return payload.To
	}
	switch event.Type {
	case "VALIDATE":
		return PhaseValidating
	case "SEARCH":
		return PhaseSearching
	case "SUCCEED":
		return PhaseSucceeded
	case "FAIL":
		return PhaseFailed
	default:
		return Phase(event.Type)
	}
}
