package planning

import (
	"fmt"
	"strings"
)

// Algorithm selects the cost model and expansion order of a search.
type Algorithm int

// Supported algorithms.
const (
	// Traditional minimises raw discontentment.
	Traditional Algorithm = iota
	// EfficiencyBased maximises discontentment reduction per unit of duration.
	EfficiencyBased
	// Hybrid blends both cost models with a HybridSchedule.
	Hybrid
)

// String returns the configuration name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case Traditional:
		return "Traditional"
	case EfficiencyBased:
		return "EfficiencyBased"
	case Hybrid:
		return "Hybrid"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm parses an algorithm name. Matching is case-insensitive
// and accepts "Efficient" and "Efficiency" for EfficiencyBased.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "traditional":
		return Traditional, nil
	case "efficiencybased", "efficiency", "efficient":
		return EfficiencyBased, nil
	case "hybrid":
		return Hybrid, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// Mode selects how exhaustive a search is.
type Mode int

// Supported modes.
const (
	// Best explores every non-dominated path up to the bound.
	Best Mode = iota
	// Fast stops at the first satisfying node.
	Fast
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case Best:
		return "Best"
	case Fast:
		return "Fast"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a solution mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "best":
		return Best, nil
	case "fast":
		return Fast, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Request holds every input of one planning call.
type Request struct {
	Initial   State
	Goals     GoalSet
	Actions   Catalogue
	Algorithm Algorithm
	Mode      Mode

	// Bound is the maximum number of actions on any path.
	Bound int

	// MaxSteps caps the number of node expansions. Zero means no cap.
	MaxSteps int

	// Schedule tunes Hybrid searches. Nil selects DefaultHybridSchedule.
	Schedule *HybridSchedule
}

// Validate checks the request invariants. An empty catalogue is not a
// validation error; the search reports it as a Failure.
func (r Request) Validate() error {
	if r.Bound < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidBound, r.Bound)
	}
	if r.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps %d", ErrInvalidBound, r.MaxSteps)
	}
	switch r.Algorithm {
	case Traditional, EfficiencyBased, Hybrid:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(r.Algorithm))
	}
	switch r.Mode {
	case Best, Fast:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(r.Mode))
	}
	if !r.Initial.Valid() {
		return fmt.Errorf("%w: initial state", ErrInvalidValue)
	}
	if err := r.Goals.Validate(); err != nil {
		return err
	}
	if r.Schedule != nil {
		if err := r.Schedule.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HybridSchedule returns the schedule in effect for the request.
func (r Request) HybridSchedule() HybridSchedule {
	if r.Schedule == nil {
		return DefaultHybridSchedule()
	}
	return *r.Schedule
}
