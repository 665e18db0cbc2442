package planning

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Action is a labelled, fixed-duration change applied additively to a state.
type Action struct {
	label    string
	duration float64
	deltas   map[string]float64
}

// NewAction creates an action. The duration must be strictly positive.
// The deltas map is copied.
func NewAction(label string, duration float64, deltas map[string]float64) (Action, error) {
	if strings.TrimSpace(label) == "" {
		return Action{}, ErrEmptyLabel
	}
	if !finite(duration) {
		return Action{}, fmt.Errorf("%w: action %q duration", ErrInvalidValue, label)
	}
	if duration <= 0 {
		return Action{}, fmt.Errorf("%w: action %q has duration %g", ErrInvalidDuration, label, duration)
	}
	for property, delta := range deltas {
		if property == "" {
			return Action{}, fmt.Errorf("%w: action %q", ErrEmptyProperty, label)
		}
		if !finite(delta) {
			return Action{}, fmt.Errorf("%w: action %q delta %q", ErrInvalidValue, label, property)
		}
	}
	return Action{label: label, duration: duration, deltas: maps.Clone(deltas)}, nil
}

// MustNewAction is like NewAction but panics on error.
func MustNewAction(label string, duration float64, deltas map[string]float64) Action {
	a, err := NewAction(label, duration, deltas)
	if err != nil {
		panic(err)
	}
	return a
}

// Label returns the action label.
func (a Action) Label() string { return a.label }

// Duration returns the time the action takes.
func (a Action) Duration() float64 { return a.duration }

// Delta returns the change the action applies to property.
func (a Action) Delta(property string) float64 { return a.deltas[property] }

// Deltas returns a copy of the action deltas.
func (a Action) Deltas() map[string]float64 { return maps.Clone(a.deltas) }

// Properties returns the properties the action changes, sorted.
func (a Action) Properties() []string {
	return slices.Sorted(maps.Keys(a.deltas))
}

// Inverse returns an action with the given label and negated deltas.
// Applying an action followed by its inverse yields the original state.
func (a Action) Inverse(label string) (Action, error) {
	inv := make(map[string]float64, len(a.deltas))
	for k, v := range a.deltas {
		inv[k] = -v
	}
	return NewAction(label, a.duration, inv)
}

// Catalogue is an ordered collection of actions with unique labels.
type Catalogue struct {
	actions []Action
}

// NewCatalogue creates a catalogue. Identical deltas under different labels
// are kept as separate actions.
func NewCatalogue(actions ...Action) (Catalogue, error) {
	seen := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		if a.label == "" {
			return Catalogue{}, ErrEmptyLabel
		}
		if a.duration <= 0 {
			return Catalogue{}, fmt.Errorf("%w: action %q", ErrInvalidDuration, a.label)
		}
		if _, dup := seen[a.label]; dup {
			return Catalogue{}, fmt.Errorf("%w: %s", ErrDuplicateLabel, a.label)
		}
		seen[a.label] = struct{}{}
	}
	return Catalogue{actions: slices.Clone(actions)}, nil
}

// MustNewCatalogue is like NewCatalogue but panics on error.
func MustNewCatalogue(actions ...Action) Catalogue {
	c, err := NewCatalogue(actions...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of actions.
func (c Catalogue) Len() int { return len(c.actions) }

// Actions returns the actions in insertion order.
func (c Catalogue) Actions() []Action { return slices.Clone(c.actions) }

// Sorted returns the actions ordered by label.
func (c Catalogue) Sorted() []Action {
	sorted := slices.Clone(c.actions)
	slices.SortFunc(sorted, func(a, b Action) int { return strings.Compare(a.label, b.label) })
	return sorted
}

// Lookup returns the action with the given label.
func (c Catalogue) Lookup(label string) (Action, bool) {
	for _, a := range c.actions {
		if a.label == label {
			return a, true
		}
	}
	return Action{}, false
}
