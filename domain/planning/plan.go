package planning

// Step is one action of a plan together with its outcome.
type Step struct {
	// Action is the label of the action taken.
	Action string
	// State is the state after the action.
	State State
	// Duration is the cumulative duration up to and including this step.
	Duration float64
	// Discontentment is measured in State.
	Discontentment float64
}

// Stats describes the work a search performed.
type Stats struct {
	// Expanded counts nodes whose successors were generated.
	Expanded int
	// Generated counts successor nodes created.
	Generated int
	// MaxDepth is the deepest path length reached.
	MaxDepth int
}

// Plan is the output of one planning call. It is not modified after the
// search returns it.
type Plan struct {
	Algorithm Algorithm
	Mode      Mode

	// Initial is the state the plan starts from.
	Initial State
	// InitialDiscontentment is measured in Initial.
	InitialDiscontentment float64
	// Steps are ordered from first to last action.
	Steps []Step
	// Complete reports whether the final state satisfies every goal.
	Complete bool
	// Stats describes the search that produced the plan.
	Stats Stats
}

// Len returns the number of steps.
func (p *Plan) Len() int { return len(p.Steps) }

// Final returns the state after the last step, or the initial state.
func (p *Plan) Final() State {
	if len(p.Steps) == 0 {
		return p.Initial
	}
	return p.Steps[len(p.Steps)-1].State
}

// Discontentment returns the discontentment after the last step.
func (p *Plan) Discontentment() float64 {
	if len(p.Steps) == 0 {
		return p.InitialDiscontentment
	}
	return p.Steps[len(p.Steps)-1].Discontentment
}

// Duration returns the total duration of the plan.
func (p *Plan) Duration() float64 {
	if len(p.Steps) == 0 {
		return 0
	}
	return p.Steps[len(p.Steps)-1].Duration
}

// Labels returns the action labels in order.
func (p *Plan) Labels() []string {
	labels := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		labels[i] = s.Action
	}
	return labels
}
