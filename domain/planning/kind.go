package planning

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
)

// Kind is a goal comparison. It measures how far a property value is from
// satisfying a target. Shortfall must be non-negative and zero exactly when
// the comparison holds.
type Kind interface {
	// Name identifies the kind in configuration documents.
	Name() string
	// Shortfall returns the unmet amount for value against target.
	Shortfall(value, target float64) float64
}

// KindFunc adapts a shortfall function into a Kind.
type KindFunc struct {
	name string
	fn   func(value, target float64) float64
}

// NewKind creates a Kind from a name and shortfall function.
func NewKind(name string, fn func(value, target float64) float64) KindFunc {
	return KindFunc{name: name, fn: fn}
}

// Name implements Kind.
func (k KindFunc) Name() string { return k.name }

// Shortfall implements Kind.
func (k KindFunc) Shortfall(value, target float64) float64 { return k.fn(value, target) }

// Built-in comparison kinds.
var (
	// GreaterThanOrEqualTo is satisfied when value >= target.
	GreaterThanOrEqualTo Kind = NewKind("GreaterThanOrEqualTo", func(value, target float64) float64 {
		return math.Max(0, target-value)
	})

	// LessThanOrEqualTo is satisfied when value <= target.
	LessThanOrEqualTo Kind = NewKind("LessThanOrEqualTo", func(value, target float64) float64 {
		return math.Max(0, value-target)
	})

	// Equal is satisfied when value == target.
	Equal Kind = NewKind("Equal", func(value, target float64) float64 {
		return math.Abs(value - target)
	})

	// Minimize ignores the target and drives the value toward zero.
	Minimize Kind = NewKind("Minimize", func(value, _ float64) float64 {
		return math.Max(0, value)
	})
)

type kindEntry struct {
	name string
	kind Kind
}

type kindRegistry struct {
	mu      sync.RWMutex
	entries map[string]kindEntry
}

var kinds = newKindRegistry()

func newKindRegistry() *kindRegistry {
	r := &kindRegistry{entries: make(map[string]kindEntry)}
	for _, k := range []Kind{GreaterThanOrEqualTo, LessThanOrEqualTo, Equal, Minimize} {
		r.entries[strings.ToLower(k.Name())] = kindEntry{name: k.Name(), kind: k}
	}
	r.entries["equalto"] = kindEntry{name: "EqualTo", kind: Equal}
	return r
}

// RegisterKind makes a comparison kind available to LookupKind.
// Names are matched case-insensitively.
func RegisterKind(k Kind) error {
	return RegisterKindAlias(k.Name(), k)
}

// RegisterKindAlias registers k under an additional name.
func RegisterKindAlias(name string, k Kind) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownKind)
	}
	key := strings.ToLower(name)

	kinds.mu.Lock()
	defer kinds.mu.Unlock()

	if _, exists := kinds.entries[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, name)
	}
	kinds.entries[key] = kindEntry{name: name, kind: k}
	return nil
}

// LookupKind returns the kind registered under name.
func LookupKind(name string) (Kind, error) {
	kinds.mu.RLock()
	defer kinds.mu.RUnlock()

	e, ok := kinds.entries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return e.kind, nil
}

// KindNames returns every registered name, aliases included, sorted.
func KindNames() []string {
	kinds.mu.RLock()
	defer kinds.mu.RUnlock()

	names := make([]string, 0, len(kinds.entries))
	for _, e := range kinds.entries {
		names = append(names, e.name)
	}
	slices.Sort(names)
	return names
}
