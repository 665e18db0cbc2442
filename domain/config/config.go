// Package config provides the domain model of a planner configuration
// document and its conversion into a planning request.
package config

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/goap/domain/planning"
)

// Defaults applied to omitted plan settings.
const (
	DefaultAlgorithm = "Traditional"
	DefaultSolution  = "Best"
	DefaultMaxDepth  = 10
	DefaultKind      = "GreaterThanOrEqualTo"
	DefaultWeight    = 1.0
)

// Document is a complete planner configuration.
type Document struct {
	// State is the initial property values.
	State map[string]float64 `json:"state" yaml:"state"`
	// Goals maps a property to one or more goals on it.
	Goals map[string]GoalEntries `json:"goals" yaml:"goals"`
	// Actions maps an action label to its definition.
	Actions map[string]ActionConfig `json:"actions" yaml:"actions"`
	// Plan contains search settings.
	Plan PlanConfig `json:"plan,omitempty" yaml:"plan,omitempty"`
}

// GoalConfig defines one goal on a property.
type GoalConfig struct {
	// Target is the value the comparison is made against.
	Target float64 `json:"target" yaml:"target"`
	// Kind is the comparison name (default: GreaterThanOrEqualTo).
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
	// Weight scales the shortfall (default: 1).
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// EffectiveKind returns the configured kind or the default.
func (g GoalConfig) EffectiveKind() string {
	if g.Kind == "" {
		return DefaultKind
	}
	return g.Kind
}

// EffectiveWeight returns the configured weight or the default.
func (g GoalConfig) EffectiveWeight() float64 {
	if g.Weight == nil {
		return DefaultWeight
	}
	return *g.Weight
}

// GoalEntries holds the goals of one property. A document may give a
// single goal object or a list of them.
type GoalEntries []GoalConfig

// UnmarshalYAML accepts a goal mapping or a sequence of goal mappings.
func (g *GoalEntries) UnmarshalYAML(unmarshal func(any) error) error {
	var list []GoalConfig
	if err := unmarshal(&list); err == nil {
		*g = list
		return nil
	}
	var single GoalConfig
	if err := unmarshal(&single); err != nil {
		return err
	}
	*g = GoalEntries{single}
	return nil
}

// UnmarshalJSON accepts a goal object or an array of goal objects.
func (g *GoalEntries) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty goal definition")
	}
	if data[0] == '[' {
		var list []GoalConfig
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*g = list
		return nil
	}
	var single GoalConfig
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*g = GoalEntries{single}
	return nil
}

// ActionConfig defines one action.
type ActionConfig struct {
	// Duration is the time the action takes. Must be positive.
	Duration float64 `json:"duration" yaml:"duration"`
	// Deltas maps a property to the change the action applies.
	Deltas map[string]float64 `json:"deltas,omitempty" yaml:"deltas,omitempty"`
}

// PlanConfig contains search settings.
type PlanConfig struct {
	// Algorithm is Traditional, EfficiencyBased or Hybrid.
	Algorithm string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`
	// Solution is Fast or Best.
	Solution string `json:"solution,omitempty" yaml:"solution,omitempty"`
	// MaxDepth bounds the number of actions on any path.
	MaxDepth int `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
	// MaxSteps caps node expansions (0 = unlimited).
	MaxSteps int `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	// Hybrid tunes the Hybrid algorithm.
	Hybrid *planning.HybridSchedule `json:"hybrid,omitempty" yaml:"hybrid,omitempty"`
}

// ApplyDefaults fills omitted plan settings.
func (d *Document) ApplyDefaults() {
	if d.Plan.Algorithm == "" {
		d.Plan.Algorithm = DefaultAlgorithm
	}
	if d.Plan.Solution == "" {
		d.Plan.Solution = DefaultSolution
	}
	if d.Plan.MaxDepth == 0 {
		d.Plan.MaxDepth = DefaultMaxDepth
	}
}
