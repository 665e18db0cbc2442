package statemachine

import (
	"time"

	"github.com/felixgeelhaar/statekit"
)

// recordTransition appends the transition to the context history.
// Actions receive a pointer to the context, so **Context here.
func recordTransition(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	c := *ctx

	var reason string
	if payload, ok := event.Payload.(TransitionPayload); ok {
		reason = payload.Reason
	}

	tr := Transition{
		From:   c.Phase,
		To:     targetOf(event),
		Reason: reason,
		At:     time.Now(),
	}
	c.History = append(c.History, tr)
	c.Phase = tr.To

	if c.OnTransition != nil {
		c.OnTransition(tr)
	}
}
