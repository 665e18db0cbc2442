// Package planning defines the goal-directed planning model: world states,
// weighted goals, actions, and the plans produced by a search.
//
// All values in this package are immutable once constructed and safe to
// share between goroutines.
package planning

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// State is an immutable snapshot of property values.
// A property that is not present reads as zero.
type State struct {
	values map[string]float64
}

// NewState creates a state from the given property values.
// The map is copied.
func NewState(values map[string]float64) State {
	return State{values: maps.Clone(values)}
}

// Get returns the value of a property, or zero if it is absent.
func (s State) Get(property string) float64 {
	return s.values[property]
}

// Has reports whether the property was set explicitly, even to zero.
func (s State) Has(property string) bool {
	_, ok := s.values[property]
	return ok
}

// Keys returns the explicitly set properties in sorted order.
func (s State) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Values returns a copy of the explicitly set property values.
func (s State) Values() map[string]float64 {
	return maps.Clone(s.values)
}

// Len returns the number of explicitly set properties.
func (s State) Len() int {
	return len(s.values)
}

// Apply returns the state reached by adding every delta of the action.
// Properties the action does not mention are carried over unchanged.
// The receiver is not modified.
func (s State) Apply(a Action) State {
	next := make(map[string]float64, len(s.values)+len(a.deltas))
	maps.Copy(next, s.values)
	for property, delta := range a.deltas {
		next[property] += delta
	}
	return State{values: next}
}

// Equal reports whether both states hold the same effective values.
// Explicit zeros and absent properties are indistinguishable.
func (s State) Equal(other State) bool {
	for k, v := range s.values {
		if other.values[k] != v {
			return false
		}
	}
	for k, v := range other.values {
		if s.values[k] != v {
			return false
		}
	}
	return true
}

// Key returns a canonical string for the effective values of the state.
// Two states have the same key if and only if they are Equal.
func (s State) Key() string {
	keys := make([]string, 0, len(s.values))
	for k, v := range s.values {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var b strings.Builder
	buf := make([]byte, 0, 24)
	for _, k := range keys {
		b.WriteString(strconv.Quote(k))
		b.WriteByte('=')
		buf = strconv.AppendFloat(buf[:0], s.values[k], 'g', -1, 64)
		b.Write(buf)
		b.WriteByte(';')
	}
	return b.String()
}

// Valid reports whether every value is a finite number.
func (s State) Valid() bool {
	for _, v := range s.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// String renders the state as "k=v" pairs in property order.
func (s State) String() string {
	parts := make([]string, 0, len(s.values))
	for _, k := range s.Keys() {
		parts = append(parts, k+"="+strconv.FormatFloat(s.values[k], 'g', -1, 64))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
