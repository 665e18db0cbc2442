package config

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/felixgeelhaar/goap/domain/planning"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the dotted path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates planner configuration documents.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks the document and returns every problem found.
// Omitted plan settings are treated as their defaults.
func (v *Validator) Validate(doc *Document) ValidationErrors {
	v.errors = nil

	v.validateState(doc)
	v.validateGoals(doc)
	v.validateActions(doc)
	v.validatePlan(doc)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validateState(doc *Document) {
	for _, property := range sortedKeys(doc.State) {
		path := "state." + property
		if strings.TrimSpace(property) == "" {
			v.addError("state", "property name is required")
			continue
		}
		if !finite(doc.State[property]) {
			v.addError(path, "must be a finite number")
		}
	}
}

func (v *Validator) validateGoals(doc *Document) {
	if len(doc.Goals) == 0 {
		v.addError("goals", "at least one goal is required")
		return
	}

	for _, property := range sortedKeys(doc.Goals) {
		entries := doc.Goals[property]
		base := "goals." + property
		if strings.TrimSpace(property) == "" {
			v.addError("goals", "property name is required")
			continue
		}
		if len(entries) == 0 {
			v.addError(base, "goal definition is empty")
			continue
		}
		for i, g := range entries {
			path := base
			if len(entries) > 1 {
				path = fmt.Sprintf("%s[%d]", base, i)
			}
			if _, err := planning.LookupKind(g.EffectiveKind()); err != nil {
				v.addError(path+".kind", fmt.Sprintf("unknown kind %q (valid: %s)", g.Kind, strings.Join(planning.KindNames(), ", ")))
			}
			if !finite(g.Target) {
				v.addError(path+".target", "must be a finite number")
			}
			w := g.EffectiveWeight()
			if !finite(w) {
				v.addError(path+".weight", "must be a finite number")
			} else if w < 0 {
				v.addError(path+".weight", "must not be negative")
			}
		}
	}
}

func (v *Validator) validateActions(doc *Document) {
	if len(doc.Actions) == 0 {
		v.addError("actions", "at least one action is required")
		return
	}

	seen := make(map[string]string, len(doc.Actions))
	for _, label := range sortedKeys(doc.Actions) {
		a := doc.Actions[label]
		path := "actions." + label
		if strings.TrimSpace(label) == "" {
			v.addError("actions", "action label is required")
			continue
		}
		folded := strings.ToLower(strings.TrimSpace(label))
		if prev, dup := seen[folded]; dup {
			v.addError(path, fmt.Sprintf("duplicate action label (conflicts with %q)", prev))
		}
		seen[folded] = label

		if !finite(a.Duration) {
			v.addError(path+".duration", "must be a finite number")
		} else if a.Duration <= 0 {
			v.addError(path+".duration", "must be positive")
		}
		for _, property := range sortedKeys(a.Deltas) {
			if strings.TrimSpace(property) == "" {
				v.addError(path+".deltas", "property name is required")
				continue
			}
			if !finite(a.Deltas[property]) {
				v.addError(path+".deltas."+property, "must be a finite number")
			}
		}
	}
}

func (v *Validator) validatePlan(doc *Document) {
	p := doc.Plan
	if p.Algorithm != "" {
		if _, err := planning.ParseAlgorithm(p.Algorithm); err != nil {
			v.addError("plan.algorithm", "must be Traditional, EfficiencyBased or Hybrid")
		}
	}
	if p.Solution != "" {
		if _, err := planning.ParseMode(p.Solution); err != nil {
			v.addError("plan.solution", "must be Fast or Best")
		}
	}
	if p.MaxDepth < 0 {
		v.addError("plan.max_depth", "must be positive")
	}
	if p.MaxSteps < 0 {
		v.addError("plan.max_steps", "must not be negative")
	}
	if p.Hybrid != nil {
		if !finite(p.Hybrid.Alpha) || p.Hybrid.Alpha < 0 || p.Hybrid.Alpha > 1 {
			v.addError("plan.hybrid.alpha", "must be between 0 and 1")
		}
		if !finite(p.Hybrid.Knee) || p.Hybrid.Knee < 0 {
			v.addError("plan.hybrid.knee", "must not be negative")
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
