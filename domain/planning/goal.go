package planning

import (
	"fmt"
	"math"
)

// Goal is a weighted comparison on one property.
// A goal with zero weight never contributes discontentment.
type Goal struct {
	Property string
	Target   float64
	Kind     Kind
	Weight   float64
}

// NewGoal creates a validated goal.
func NewGoal(property string, target float64, kind Kind, weight float64) (Goal, error) {
	g := Goal{Property: property, Target: target, Kind: kind, Weight: weight}
	if err := g.Validate(); err != nil {
		return Goal{}, err
	}
	return g, nil
}

// Validate checks the goal invariants.
func (g Goal) Validate() error {
	if g.Property == "" {
		return ErrEmptyProperty
	}
	if g.Kind == nil {
		return fmt.Errorf("%w: goal %q has no kind", ErrUnknownKind, g.Property)
	}
	if !finite(g.Target) || !finite(g.Weight) {
		return fmt.Errorf("%w: goal %q", ErrInvalidValue, g.Property)
	}
	if g.Weight < 0 {
		return fmt.Errorf("%w: goal %q has weight %g", ErrNegativeWeight, g.Property, g.Weight)
	}
	return nil
}

// Shortfall returns the unmet amount of the goal in s.
func (g Goal) Shortfall(s State) float64 {
	return math.Max(0, g.Kind.Shortfall(s.Get(g.Property), g.Target))
}

// Discontentment returns the weighted shortfall of the goal in s.
func (g Goal) Discontentment(s State) float64 {
	if g.Weight == 0 {
		return 0
	}
	return g.Weight * g.Shortfall(s)
}

// String renders the goal for diagnostics.
func (g Goal) String() string {
	name := "<nil>"
	if g.Kind != nil {
		name = g.Kind.Name()
	}
	return fmt.Sprintf("%s %s %g (weight %g)", g.Property, name, g.Target, g.Weight)
}

// GoalSet is a collection of goals. Several goals may name the same
// property; their contributions add up.
type GoalSet []Goal

// Discontentment sums the weighted shortfall of every goal in s.
// The result is never negative.
func (gs GoalSet) Discontentment(s State) float64 {
	var total float64
	for _, g := range gs {
		total += g.Discontentment(s)
	}
	return total
}

// Satisfied reports whether every goal has zero shortfall in s.
func (gs GoalSet) Satisfied(s State) bool {
	return gs.Discontentment(s) == 0
}

// Validate checks every goal in the set.
func (gs GoalSet) Validate() error {
	for _, g := range gs {
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Discontentment evaluates goals against s.
func Discontentment(s State, goals GoalSet) float64 {
	return goals.Discontentment(s)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
